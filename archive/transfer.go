package archive

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/cpknight/email-automation/mailbox"
	"github.com/cpknight/email-automation/storage"
)

// Outcome representa o resultado final da transferência de uma mensagem
type Outcome int

const (
	// OutcomeSkipped indica que a mensagem já constava como processada
	OutcomeSkipped Outcome = iota
	// OutcomeMoved indica cópia verificada e original marcado para exclusão
	OutcomeMoved
	// OutcomeFailed indica falha permanente após esgotar as tentativas
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeMoved:
		return "moved"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

const (
	maxTransferAttempts = 3
	transferRetryDelay  = 5 * time.Second
)

// errVerification sinaliza que a cópia reportou sucesso mas a mensagem não
// foi encontrada no destino; é tratada como falha transitória e re-tentada
var errVerification = errors.New("verificação falhou: mensagem não encontrada no destino")

// Transferer conduz uma mensagem pela sequência copiar → verificar → marcar
// excluída, com tentativas limitadas. As operações no servidor não são
// transacionais; o log de transações é o único registro durável usado para
// compensação em uma retomada.
type Transferer struct {
	mbox  mailbox.Mailbox
	store storage.LogStore

	// sleep é injetável para os testes não esperarem o backoff real
	sleep func(time.Duration)
}

// NewTransferer cria a máquina de transferência sobre a caixa de correio e o
// armazenamento de log
func NewTransferer(mbox mailbox.Mailbox, store storage.LogStore) *Transferer {
	return &Transferer{
		mbox:  mbox,
		store: store,
		sleep: time.Sleep,
	}
}

// Transfer move uma mensagem da origem para o destino. Se a assinatura já
// consta no log, retorna Skipped sem tocar no servidor: é esse atalho que
// torna a retomada segura.
func (t *Transferer) Transfer(ref MessageRef, sourceFolder, destFolder string, tlog *storage.TransactionLog) Outcome {
	if tlog.IsProcessed(ref.Signature) {
		log.Printf("mensagem %d (UID %d) já processada, ignorando", ref.SeqNum, ref.UID)
		return OutcomeSkipped
	}

	for attempt := 1; attempt <= maxTransferAttempts; attempt++ {
		err := t.attempt(ref, sourceFolder, destFolder)
		if err == nil {
			tlog.MarkProcessed(ref.Signature)
			t.persist(tlog)
			log.Printf("mensagem %d (UID %d) movida de %s para %s", ref.SeqNum, ref.UID, sourceFolder, destFolder)
			return OutcomeMoved
		}

		log.Printf("aviso: tentativa %d/%d de mover mensagem %d (UID %d) falhou: %v",
			attempt, maxTransferAttempts, ref.SeqNum, ref.UID, err)
		if attempt < maxTransferAttempts {
			t.sleep(transferRetryDelay)
		}
	}

	tlog.AddFailure(storage.FailedOperation{
		Signature:    ref.Signature,
		MsgID:        fmt.Sprintf("%d", ref.SeqNum),
		UID:          ref.UID,
		SourceFolder: sourceFolder,
		DestFolder:   destFolder,
		Timestamp:    storage.UTCTimestamp(),
		Error:        "Max retries exceeded",
	})
	t.persist(tlog)

	log.Printf("falha definitiva ao mover mensagem %d (UID %d) após %d tentativas", ref.SeqNum, ref.UID, maxTransferAttempts)
	return OutcomeFailed
}

// attempt executa uma passagem completa pela máquina de estados:
// Pending → Copied → Verified → Deleted
func (t *Transferer) attempt(ref MessageRef, sourceFolder, destFolder string) error {
	if _, err := t.mbox.Select(sourceFolder); err != nil {
		return err
	}

	// Correio arquivado não deve permanecer sinalizado nem como não lido
	if err := t.mbox.AddFlags(ref.SeqNum, mailbox.FlagSeen); err != nil {
		return err
	}
	if err := t.mbox.RemoveFlags(ref.SeqNum, mailbox.FlagFlagged); err != nil {
		return err
	}

	if err := t.mbox.Copy(ref.SeqNum, destFolder); err != nil {
		return err
	}

	// Alguns servidores reportam sucesso na cópia sem a mensagem ficar
	// recuperável; confirmar antes de marcar o original. A busca é pelo
	// Message-Id: o UID de origem não vale no destino, cada pasta tem seu
	// próprio espaço de UIDs. Sem Message-Id a verificação fica a cargo do
	// retorno da cópia.
	if ref.MessageID != "" {
		if _, err := t.mbox.Select(destFolder); err != nil {
			return err
		}
		found, err := t.mbox.SearchMessageID(ref.MessageID)
		if err != nil {
			return err
		}
		if !found {
			return errVerification
		}
	}

	if _, err := t.mbox.Select(sourceFolder); err != nil {
		return err
	}
	return t.mbox.AddFlags(ref.SeqNum, mailbox.FlagDeleted)
}

// persist grava o log; falha de persistência vira aviso e a execução segue
// apenas em memória
func (t *Transferer) persist(tlog *storage.TransactionLog) {
	if err := t.store.SaveTransactionLog(tlog); err != nil {
		log.Printf("aviso: não foi possível salvar o log de transações: %v", err)
	}
}
