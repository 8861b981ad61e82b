package archive

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/cpknight/email-automation/mailbox"
)

// MessageRef representa a localização de uma mensagem durante uma execução.
// SeqNum vale apenas dentro da seleção corrente e nunca é persistido; o par
// (Folder, UID) é o localizador durável gravado nos logs.
type MessageRef struct {
	Signature string
	SeqNum    uint32
	UID       uint32
	MessageID string
	Folder    string
}

// Signature calcula a impressão digital determinística de uma mensagem a
// partir dos quatro campos de identificação. Campos ausentes entram como
// string vazia. MD5 é mantido de propósito: a chave de quatro campos já
// desambigua o correio real e uma colisão causa apenas um "já arquivado"
// indevido.
func Signature(messageID, subject, date, from string) string {
	sum := md5.Sum([]byte(
		strings.TrimSpace(messageID) +
			strings.TrimSpace(subject) +
			strings.TrimSpace(date) +
			strings.TrimSpace(from),
	))
	return hex.EncodeToString(sum[:])
}

// SignatureOf calcula a assinatura dos cabeçalhos de uma mensagem
func SignatureOf(h mailbox.HeaderInfo) string {
	return Signature(h.MessageID, h.Subject, h.Date, h.From)
}

// BuildIndex varre o intervalo [start, end] da pasta e retorna o mapa de
// assinatura para referência de mensagem. A pasta deve estar selecionada
// pelo chamador antes da chamada; mensagens sem cabeçalhos interpretáveis já
// chegam omitidas do porto de acesso.
func BuildIndex(m mailbox.Mailbox, folder string, start, end uint32) (map[string]MessageRef, error) {
	if end < start {
		return map[string]MessageRef{}, nil
	}

	headers, err := m.FetchHeaders(start, end)
	if err != nil {
		return nil, fmt.Errorf("falha ao indexar %s (%d:%d): %w", folder, start, end, err)
	}

	index := make(map[string]MessageRef, len(headers))
	for _, h := range headers {
		index[SignatureOf(h)] = MessageRef{
			Signature: SignatureOf(h),
			SeqNum:    h.SeqNum,
			UID:       h.UID,
			MessageID: h.MessageID,
			Folder:    folder,
		}
	}
	return index, nil
}

// BuildFolderIndex seleciona a pasta e indexa todas as suas mensagens
func BuildFolderIndex(m mailbox.Mailbox, folder string) (map[string]MessageRef, error) {
	total, err := m.Select(folder)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return map[string]MessageRef{}, nil
	}
	return BuildIndex(m, folder, 1, total)
}
