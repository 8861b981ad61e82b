package archive

import (
	"fmt"
	"log"
	"os/exec"
	"strings"
)

// Category representa a decisão do classificador externo sobre uma mensagem
type Category string

const (
	// CategoryNotifications é ruído automatizado: avisos, faturas, alertas
	CategoryNotifications Category = "notifications"
	// CategoryCorrespondence é correio escrito por pessoas
	CategoryCorrespondence Category = "correspondence"

	// CategoryFallback é usada quando o oráculo falha ou responde algo
	// fora do vocabulário
	CategoryFallback = CategoryNotifications
)

// Classifier é a capacidade de classificação, consumida como um oráculo
// externo síncrono
type Classifier interface {
	Classify(ref MessageRef) (Category, error)
}

// ClassifierFunc adapta uma função à interface Classifier
type ClassifierFunc func(ref MessageRef) (Category, error)

// Classify implementa Classifier
func (f ClassifierFunc) Classify(ref MessageRef) (Category, error) {
	return f(ref)
}

// ExecClassifier invoca um comando externo com o localizador da mensagem e
// interpreta a categoria na saída padrão
type ExecClassifier struct {
	command []string
}

// NewExecClassifier cria o classificador sobre o comando configurado
func NewExecClassifier(command []string) (*ExecClassifier, error) {
	if len(command) == 0 {
		return nil, fmt.Errorf("comando do classificador não configurado")
	}
	return &ExecClassifier{command: command}, nil
}

// Classify executa o comando com pasta e UID como argumentos finais
func (c *ExecClassifier) Classify(ref MessageRef) (Category, error) {
	args := append(append([]string{}, c.command[1:]...), ref.Folder, fmt.Sprintf("%d", ref.UID))
	out, err := exec.Command(c.command[0], args...).Output()
	if err != nil {
		return "", fmt.Errorf("falha ao executar classificador: %w", err)
	}
	return ParseCategory(string(out))
}

// ParseCategory interpreta a resposta do oráculo; respostas fora do
// vocabulário são erro, tratado pelo chamador com a categoria de reserva
func ParseCategory(output string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(output))) {
	case CategoryNotifications:
		return CategoryNotifications, nil
	case CategoryCorrespondence:
		return CategoryCorrespondence, nil
	}
	return "", fmt.Errorf("resposta do classificador fora do vocabulário: %q", strings.TrimSpace(output))
}

// SafeClassify consulta o oráculo e degrada qualquer falha para a categoria
// de reserva, com aviso
func SafeClassify(c Classifier, ref MessageRef) Category {
	category, err := c.Classify(ref)
	if err != nil {
		log.Printf("aviso: classificador falhou para mensagem UID %d, usando %s: %v", ref.UID, CategoryFallback, err)
		return CategoryFallback
	}
	return category
}
