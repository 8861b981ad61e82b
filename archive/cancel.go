package archive

import (
	"sync/atomic"
)

// CancelFlag é o sinal cooperativo de cancelamento. É consultado apenas nas
// fronteiras de mensagem e de lote: a sequência copiar → verificar → excluir
// de uma mensagem nunca é interrompida no meio.
type CancelFlag struct {
	set atomic.Bool
}

// Cancel aciona o cancelamento; retorna true apenas na primeira chamada,
// para sinais repetidos gerarem somente um novo aviso
func (c *CancelFlag) Cancel() bool {
	return !c.set.Swap(true)
}

// Cancelled informa se o cancelamento foi solicitado
func (c *CancelFlag) Cancelled() bool {
	return c.set.Load()
}
