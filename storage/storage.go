package storage

import (
	"errors"
)

// ErrSummaryNotFound é retornado quando ainda não existe um relatório de
// recuperação gravado
var ErrSummaryNotFound = errors.New("relatório de recuperação não encontrado")

// ErrLogNotFound é retornado pelas operações de leitura direta quando o log
// de transações não existe
var ErrLogNotFound = errors.New("log de transações não encontrado")

// LogStore é a interface para persistência do log de transações e do
// relatório de recuperação
type LogStore interface {
	// LoadTransactionLog carrega o log existente; se o arquivo não existir
	// ou estiver ilegível, retorna um log vazio com nova sessão; nunca
	// falha, apenas avisa
	LoadTransactionLog() *TransactionLog

	// SaveTransactionLog grava o log por completo, de forma atômica. É
	// chamado após cada transferência bem-sucedida, portanto uma queda do
	// processo perde no máximo a mensagem em andamento
	SaveTransactionLog(log *TransactionLog) error

	// SaveRecoverySummary sobrescreve o relatório derivado da execução
	SaveRecoverySummary(summary *RecoverySummary) error

	// LoadRecoverySummary lê o relatório gravado, ou ErrSummaryNotFound
	LoadRecoverySummary() (*RecoverySummary, error)

	// ReadTransactionLog lê o log sem criar um novo quando ausente; usado
	// pelo shell de recuperação, que só apresenta estado existente
	ReadTransactionLog() (*TransactionLog, error)

	// ClearLogs remove os dois arquivos; ação explícita do operador
	ClearLogs() error
}
