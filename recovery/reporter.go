package recovery

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/cpknight/email-automation/storage"
)

// Reporter apresenta, somente leitura, o estado persistido pelo mecanismo de
// arquivamento: o log de transações e o relatório da última execução. A
// única ação destrutiva é Clear, reservada ao operador.
type Reporter struct {
	store storage.LogStore
}

// NewReporter cria o apresentador sobre o armazenamento de logs
func NewReporter(store storage.LogStore) *Reporter {
	return &Reporter{store: store}
}

// TransactionStatus formata o estado atual do log de transações
func (r *Reporter) TransactionStatus() string {
	tlog, err := r.store.ReadTransactionLog()
	if err != nil {
		if errors.Is(err, storage.ErrLogNotFound) {
			return "Nenhum log de transações encontrado.\n"
		}
		return fmt.Sprintf("Erro ao carregar o log de transações: %v\n", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Sessão iniciada em: %s\n", tlog.SessionStart)
	fmt.Fprintf(&b, "Processadas com sucesso: %d\n", len(tlog.ProcessedSignatures))
	fmt.Fprintf(&b, "Operações com falha: %d\n", len(tlog.FailedOperations))

	if len(tlog.FailedOperations) > 0 {
		b.WriteString("\nOperações com falha:\n")
		w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "MSG\tUID\tORIGEM\tDESTINO\tQUANDO\tERRO")
		for _, op := range tlog.FailedOperations {
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\n",
				op.MsgID, op.UID, op.SourceFolder, op.DestFolder, op.Timestamp, op.Error)
		}
		w.Flush()
	}
	return b.String()
}

// RecoveryReport formata o relatório da última execução
func (r *Reporter) RecoveryReport() string {
	summary, err := r.store.LoadRecoverySummary()
	if err != nil {
		if errors.Is(err, storage.ErrSummaryNotFound) {
			return "Nenhum relatório de recuperação encontrado.\n"
		}
		return fmt.Sprintf("Erro ao carregar o relatório de recuperação: %v\n", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Execução concluída em: %s\n", summary.CompletionTime)
	if summary.Interrupted {
		b.WriteString("A execução foi interrompida; rode novamente para retomar.\n")
	}

	folders := make([]string, 0, len(summary.FolderStats))
	for folder := range summary.FolderStats {
		folders = append(folders, folder)
	}
	sort.Strings(folders)

	b.WriteString("\n")
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PASTA\tENCONTRADAS\tMOVIDAS\tFALHAS")
	for _, folder := range folders {
		st := summary.FolderStats[folder]
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", folder, st.Found, st.Moved, st.Failed)
	}
	w.Flush()

	fmt.Fprintf(&b, "\nTotal processado (todas as sessões): %d\n", summary.TotalProcessed)
	fmt.Fprintf(&b, "Total de falhas: %d\n", summary.TotalFailed)
	return b.String()
}

// Clear remove o log de transações e o relatório de recuperação
func (r *Reporter) Clear() error {
	return r.store.ClearLogs()
}
