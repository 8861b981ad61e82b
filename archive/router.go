package archive

import (
	"log"

	"github.com/cpknight/email-automation/config"
	"github.com/cpknight/email-automation/mailbox"
	"github.com/cpknight/email-automation/storage"
)

// Router distribui as mensagens de uma pasta de entrada entre as pastas de
// destino por categoria, consultando o classificador externo mensagem a
// mensagem. Usa a mesma máquina de transferência e o mesmo log do
// arquivamento, portanto herda a retomada segura.
type Router struct {
	mbox       mailbox.Mailbox
	store      storage.LogStore
	transferer *Transferer
	classifier Classifier
	cancel     *CancelFlag

	sourceFolder string
	destinations map[Category]string
	batchSize    uint32
}

// NewRouter cria o roteador de classificação
func NewRouter(mbox mailbox.Mailbox, store storage.LogStore, classifier Classifier, cfg *config.Config, cancel *CancelFlag) *Router {
	if cancel == nil {
		cancel = &CancelFlag{}
	}
	return &Router{
		mbox:       mbox,
		store:      store,
		transferer: NewTransferer(mbox, store),
		classifier: classifier,
		cancel:     cancel,

		sourceFolder: cfg.Classifier.SourceFolder,
		destinations: map[Category]string{
			CategoryNotifications:  cfg.Classifier.DestFolderNotifications,
			CategoryCorrespondence: cfg.Classifier.DestFolderCorrespondence,
		},
		batchSize: cfg.Archive.BatchSize,
	}
}

// Run classifica e move as mensagens da pasta de entrada, lote a lote, e
// retorna o relatório da execução
func (r *Router) Run() *storage.RecoverySummary {
	tlog := r.store.LoadTransactionLog()

	st := &storage.FolderStats{}
	total, err := r.mbox.Select(r.sourceFolder)
	if err != nil {
		log.Printf("aviso: falha ao acessar %s: %v", r.sourceFolder, err)
	} else {
		st.Found = int(total)
		log.Printf("encontradas %d mensagens em %s", total, r.sourceFolder)

		windows := Windows(total, r.batchSize)
		for i := len(windows) - 1; i >= 0; i-- {
			if r.cancel.Cancelled() {
				break
			}
			r.processWindow(windows[i], tlog, st)
		}
	}

	summary := &storage.RecoverySummary{
		CompletionTime: storage.UTCTimestamp(),
		FolderStats:    map[string]*storage.FolderStats{r.sourceFolder: st},
		TotalProcessed: len(tlog.ProcessedSignatures),
		TotalFailed:    len(tlog.FailedOperations),
		Interrupted:    r.cancel.Cancelled(),
	}
	if err := r.store.SaveRecoverySummary(summary); err != nil {
		log.Printf("aviso: não foi possível salvar o relatório de recuperação: %v", err)
	}
	return summary
}

func (r *Router) processWindow(w Window, tlog *storage.TransactionLog, st *storage.FolderStats) {
	log.Printf("classificando lote %d-%d de %s", w.Start, w.End, r.sourceFolder)

	if _, err := r.mbox.Select(r.sourceFolder); err != nil {
		log.Printf("aviso: falha ao selecionar %s: %v", r.sourceFolder, err)
		return
	}
	index, err := BuildIndex(r.mbox, r.sourceFolder, w.Start, w.End)
	if err != nil {
		log.Printf("aviso: falha ao indexar lote %d-%d: %v", w.Start, w.End, err)
		return
	}

	touched := false
	for _, ref := range index {
		if r.cancel.Cancelled() {
			break
		}
		if tlog.IsProcessed(ref.Signature) {
			continue
		}

		dest := r.destinations[SafeClassify(r.classifier, ref)]
		touched = true
		switch r.transferer.Transfer(ref, r.sourceFolder, dest, tlog) {
		case OutcomeMoved:
			st.Moved++
		case OutcomeFailed:
			st.Failed++
		}
	}
	if !touched {
		return
	}

	if _, err := r.mbox.Select(r.sourceFolder); err != nil {
		log.Printf("aviso: falha ao selecionar %s para expunge: %v", r.sourceFolder, err)
		return
	}
	if err := r.mbox.Expunge(); err != nil {
		log.Printf("aviso: falha ao executar expunge em %s: %v", r.sourceFolder, err)
	}
}
