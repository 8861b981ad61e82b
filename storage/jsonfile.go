package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// JSONStore implementa LogStore sobre dois arquivos JSON. A escrita é feita
// em arquivo temporário seguido de rename, para nunca deixar um arquivo
// truncado após uma queda no meio da gravação.
type JSONStore struct {
	transactionPath string
	recoveryPath    string
}

// NewJSONStore cria um LogStore baseado em arquivos JSON
func NewJSONStore(transactionPath, recoveryPath string) *JSONStore {
	return &JSONStore{
		transactionPath: transactionPath,
		recoveryPath:    recoveryPath,
	}
}

// LoadTransactionLog carrega o log de transações; qualquer problema resulta
// em um log vazio de sessão nova, com aviso no console
func (s *JSONStore) LoadTransactionLog() *TransactionLog {
	tlog, err := s.ReadTransactionLog()
	if err != nil {
		if !errors.Is(err, ErrLogNotFound) {
			log.Printf("aviso: não foi possível carregar o log de transações: %v", err)
		}
		return NewTransactionLog()
	}
	return tlog
}

// ReadTransactionLog lê o log do disco sem criar um novo
func (s *JSONStore) ReadTransactionLog() (*TransactionLog, error) {
	data, err := os.ReadFile(s.transactionPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrLogNotFound
		}
		return nil, fmt.Errorf("falha ao ler %s: %w", s.transactionPath, err)
	}

	tlog := &TransactionLog{}
	if err := json.Unmarshal(data, tlog); err != nil {
		return nil, fmt.Errorf("falha ao interpretar %s: %w", s.transactionPath, err)
	}
	if tlog.ProcessedSignatures == nil {
		tlog.ProcessedSignatures = []string{}
	}
	if tlog.FailedOperations == nil {
		tlog.FailedOperations = []FailedOperation{}
	}
	tlog.reindex()
	return tlog, nil
}

// SaveTransactionLog grava o log de forma atômica
func (s *JSONStore) SaveTransactionLog(tlog *TransactionLog) error {
	return writeJSON(s.transactionPath, tlog)
}

// SaveRecoverySummary sobrescreve o relatório de recuperação
func (s *JSONStore) SaveRecoverySummary(summary *RecoverySummary) error {
	return writeJSON(s.recoveryPath, summary)
}

// LoadRecoverySummary lê o relatório de recuperação gravado
func (s *JSONStore) LoadRecoverySummary() (*RecoverySummary, error) {
	data, err := os.ReadFile(s.recoveryPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSummaryNotFound
		}
		return nil, fmt.Errorf("falha ao ler %s: %w", s.recoveryPath, err)
	}

	summary := &RecoverySummary{}
	if err := json.Unmarshal(data, summary); err != nil {
		return nil, fmt.Errorf("falha ao interpretar %s: %w", s.recoveryPath, err)
	}
	return summary, nil
}

// ClearLogs remove os dois arquivos, ignorando os que não existem
func (s *JSONStore) ClearLogs() error {
	for _, path := range []string{s.transactionPath, s.recoveryPath} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("falha ao remover %s: %w", path, err)
		}
	}
	return nil
}

// writeJSON serializa em um arquivo temporário no mesmo diretório e faz
// rename sobre o destino
func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("falha ao serializar %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("falha ao criar arquivo temporário em %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("falha ao gravar %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("falha ao fechar %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("falha ao substituir %s: %w", path, err)
	}
	return nil
}
