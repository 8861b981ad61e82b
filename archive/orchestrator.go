package archive

import (
	"log"

	"github.com/cpknight/email-automation/config"
	"github.com/cpknight/email-automation/mailbox"
	"github.com/cpknight/email-automation/storage"
)

// Orchestrator sequencia o arquivamento em lote: planeja janelas, filtra
// duplicatas contra o destino e o log, conduz cada candidata pela máquina de
// transferência e solicita a limpeza destrutiva por lote.
type Orchestrator struct {
	mbox       mailbox.Mailbox
	store      storage.LogStore
	transferer *Transferer
	cancel     *CancelFlag

	sourceFolders []string
	destFolder    string
	batchSize     uint32
}

// NewOrchestrator cria o orquestrador do arquivamento
func NewOrchestrator(mbox mailbox.Mailbox, store storage.LogStore, cfg *config.ArchiveConfig, cancel *CancelFlag) *Orchestrator {
	if cancel == nil {
		cancel = &CancelFlag{}
	}
	return &Orchestrator{
		mbox:          mbox,
		store:         store,
		transferer:    NewTransferer(mbox, store),
		cancel:        cancel,
		sourceFolders: cfg.SourceFolders,
		destFolder:    cfg.DestFolder,
		batchSize:     cfg.BatchSize,
	}
}

// Run executa o arquivamento completo e retorna o relatório da execução. O
// caminho de saída é o mesmo para conclusão normal e para cancelamento; a
// diferença fica no campo Interrupted do relatório.
func (o *Orchestrator) Run() *storage.RecoverySummary {
	tlog := o.store.LoadTransactionLog()
	if n := len(tlog.ProcessedSignatures); n > 0 {
		log.Printf("log de recuperação contém %d mensagens já processadas", n)
	}

	// O conjunto de assinaturas do destino é construído uma única vez e
	// atualizado em memória a cada movimentação
	log.Printf("varrendo mensagens existentes em %s para evitar duplicatas...", o.destFolder)
	destSigs := make(map[string]struct{})
	destIndex, err := BuildFolderIndex(o.mbox, o.destFolder)
	if err != nil {
		log.Printf("aviso: falha ao varrer %s: %v", o.destFolder, err)
	} else {
		for sig := range destIndex {
			destSigs[sig] = struct{}{}
		}
	}
	log.Printf("encontradas %d mensagens existentes em %s", len(destSigs), o.destFolder)

	stats := make(map[string]*storage.FolderStats, len(o.sourceFolders))
	for _, folder := range o.sourceFolders {
		if o.cancel.Cancelled() {
			break
		}
		stats[folder] = o.processFolder(folder, destSigs, tlog)
	}

	summary := &storage.RecoverySummary{
		CompletionTime: storage.UTCTimestamp(),
		FolderStats:    stats,
		TotalProcessed: len(tlog.ProcessedSignatures),
		TotalFailed:    len(tlog.FailedOperations),
		Interrupted:    o.cancel.Cancelled(),
	}
	if err := o.store.SaveRecoverySummary(summary); err != nil {
		log.Printf("aviso: não foi possível salvar o relatório de recuperação: %v", err)
	}
	return summary
}

// processFolder arquiva uma pasta de origem inteira, lote a lote
func (o *Orchestrator) processFolder(folder string, destSigs map[string]struct{}, tlog *storage.TransactionLog) *storage.FolderStats {
	st := &storage.FolderStats{}

	total, err := o.mbox.Select(folder)
	if err != nil {
		log.Printf("aviso: falha ao acessar %s: %v", folder, err)
		return st
	}
	st.Found = int(total)
	log.Printf("encontradas %d mensagens em %s", total, folder)
	if total == 0 {
		return st
	}

	// As janelas são percorridas da última para a primeira: o expunge de
	// cada lote renumera as mensagens seguintes, e drenar a partir do fim
	// mantém válida a numeração das janelas ainda não processadas
	windows := Windows(total, o.batchSize)
	for i := len(windows) - 1; i >= 0; i-- {
		if o.cancel.Cancelled() {
			break
		}
		o.processWindow(folder, windows[i], destSigs, tlog, st)
	}
	return st
}

// processWindow processa um lote: indexa a janela, separa duplicatas de
// candidatas, transfere as candidatas e faz o expunge do lote
func (o *Orchestrator) processWindow(folder string, w Window, destSigs map[string]struct{}, tlog *storage.TransactionLog, st *storage.FolderStats) {
	log.Printf("processando lote %d-%d de %s", w.Start, w.End, folder)

	if _, err := o.mbox.Select(folder); err != nil {
		log.Printf("aviso: falha ao selecionar %s: %v", folder, err)
		return
	}
	index, err := BuildIndex(o.mbox, folder, w.Start, w.End)
	if err != nil {
		log.Printf("aviso: falha ao indexar lote %d-%d de %s: %v", w.Start, w.End, folder, err)
		return
	}
	if len(index) == 0 {
		return
	}

	var candidates, duplicates []MessageRef
	for sig, ref := range index {
		switch {
		case tlog.IsProcessed(sig):
			// Já migrada em execução anterior; nunca re-submeter
			log.Printf("mensagem %d (UID %d) já consta no log, ignorando", ref.SeqNum, ref.UID)
		case contains(destSigs, sig):
			duplicates = append(duplicates, ref)
		default:
			candidates = append(candidates, ref)
		}
	}
	if len(candidates) == 0 && len(duplicates) == 0 {
		// Lote inteiro já migrado; avançar sem tocar no servidor
		return
	}

	// Duplicatas já presentes no destino não são copiadas; apenas saem da
	// origem junto com o lote
	for _, ref := range duplicates {
		if err := o.mbox.AddFlags(ref.SeqNum, mailbox.FlagDeleted); err != nil {
			log.Printf("aviso: falha ao marcar duplicata %d (UID %d): %v", ref.SeqNum, ref.UID, err)
		}
	}

	for _, ref := range candidates {
		if o.cancel.Cancelled() {
			break
		}
		switch o.transferer.Transfer(ref, folder, o.destFolder, tlog) {
		case OutcomeMoved:
			st.Moved++
			destSigs[ref.Signature] = struct{}{}
		case OutcomeFailed:
			st.Failed++
		}
	}

	// Expunge uma única vez por lote, para limitar as idas destrutivas ao
	// servidor; vale também para lotes interrompidos, que já marcaram
	// mensagens com \Deleted
	if _, err := o.mbox.Select(folder); err != nil {
		log.Printf("aviso: falha ao selecionar %s para expunge: %v", folder, err)
		return
	}
	if err := o.mbox.Expunge(); err != nil {
		log.Printf("aviso: falha ao executar expunge em %s: %v", folder, err)
		return
	}
	log.Printf("lote concluído - %d mensagens movidas de %s até agora", st.Moved, folder)
}

func contains(set map[string]struct{}, sig string) bool {
	_, ok := set[sig]
	return ok
}
