package storage

import (
	"time"
)

// FailedOperation representa uma operação de movimentação que falhou em
// definitivo após esgotar as tentativas
type FailedOperation struct {
	Signature    string `json:"signature"`
	MsgID        string `json:"msg_id"`
	UID          uint32 `json:"uid"`
	SourceFolder string `json:"source_folder"`
	DestFolder   string `json:"dest_folder"`
	Timestamp    string `json:"timestamp"`
	Error        string `json:"error"`
}

// TransactionLog representa o registro durável de recuperação. As assinaturas
// processadas nunca são removidas nem re-submetidas em execuções posteriores.
type TransactionLog struct {
	SessionStart        string            `json:"session_start"`
	ProcessedSignatures []string          `json:"processed_signatures"`
	FailedOperations    []FailedOperation `json:"failed_operations"`

	processed map[string]struct{}
}

// NewTransactionLog cria um log vazio com o início de sessão atual
func NewTransactionLog() *TransactionLog {
	return &TransactionLog{
		SessionStart:        UTCTimestamp(),
		ProcessedSignatures: []string{},
		FailedOperations:    []FailedOperation{},
		processed:           make(map[string]struct{}),
	}
}

// reindex reconstrói o conjunto de consulta rápida após carregar do disco
func (l *TransactionLog) reindex() {
	l.processed = make(map[string]struct{}, len(l.ProcessedSignatures))
	for _, sig := range l.ProcessedSignatures {
		l.processed[sig] = struct{}{}
	}
}

// IsProcessed informa se a assinatura já foi migrada em alguma execução
func (l *TransactionLog) IsProcessed(signature string) bool {
	if l.processed == nil {
		l.reindex()
	}
	_, ok := l.processed[signature]
	return ok
}

// MarkProcessed acrescenta a assinatura ao conjunto processado, sem duplicar
func (l *TransactionLog) MarkProcessed(signature string) {
	if l.IsProcessed(signature) {
		return
	}
	l.ProcessedSignatures = append(l.ProcessedSignatures, signature)
	l.processed[signature] = struct{}{}
}

// AddFailure registra uma falha permanente
func (l *TransactionLog) AddFailure(op FailedOperation) {
	l.FailedOperations = append(l.FailedOperations, op)
}

// FolderStats representa a contagem de mensagens de uma pasta de origem em
// uma execução
type FolderStats struct {
	Found  int `json:"found"`
	Moved  int `json:"moved"`
	Failed int `json:"failed"`
}

// RecoverySummary representa o relatório final de uma execução. É derivado e
// sobrescrito a cada execução; o TransactionLog é a fonte autoritativa.
type RecoverySummary struct {
	CompletionTime string                  `json:"completion_time"`
	FolderStats    map[string]*FolderStats `json:"folder_stats"`
	TotalProcessed int                     `json:"total_processed"`
	TotalFailed    int                     `json:"total_failed"`
	Interrupted    bool                    `json:"interrupted"`
}

// UTCTimestamp retorna o horário atual em UTC no formato usado em todos os
// logs e arquivos
func UTCTimestamp() string {
	return time.Now().UTC().Format("2006-01-02 15:04:05") + " UTC"
}
