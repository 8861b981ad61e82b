package mailbox

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"log"
	"net/textproto"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"

	"github.com/cpknight/email-automation/config"
)

const (
	connectAttempts   = 3
	connectRetryDelay = 5 * time.Second
)

// IMAPMailbox implementa a interface Mailbox sobre uma conexão IMAP
type IMAPMailbox struct {
	client *client.Client
}

// Connect estabelece a conexão com o servidor IMAP, com tentativas limitadas.
// Esgotadas as tentativas, o erro é fatal para o chamador: nada pode ser
// feito sem conexão.
func Connect(cfg *config.IMAPConfig) (*IMAPMailbox, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Server, cfg.Port)

	var lastErr error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		c, err := dial(cfg, addr)
		if err == nil {
			if err = c.Login(cfg.Username, cfg.Password); err == nil {
				log.Printf("conectado ao servidor IMAP em %s", addr)
				return &IMAPMailbox{client: c}, nil
			}
			c.Logout()
		}
		lastErr = err
		log.Printf("aviso: tentativa de conexão %d/%d falhou: %v", attempt, connectAttempts, err)
		if attempt < connectAttempts {
			time.Sleep(connectRetryDelay)
		}
	}
	return nil, fmt.Errorf("falha ao conectar a %s após %d tentativas: %w", addr, connectAttempts, lastErr)
}

func dial(cfg *config.IMAPConfig, addr string) (*client.Client, error) {
	tlsConfig := &tls.Config{ServerName: cfg.Server}

	if cfg.TLS {
		c, err := client.DialTLS(addr, tlsConfig)
		if err != nil {
			return nil, fmt.Errorf("falha ao conectar via TLS: %w", err)
		}
		return c, nil
	}

	c, err := client.Dial(addr)
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar: %w", err)
	}
	if err := c.StartTLS(tlsConfig); err != nil {
		c.Logout()
		return nil, fmt.Errorf("falha ao iniciar STARTTLS: %w", err)
	}
	return c, nil
}

// Select seleciona a pasta e retorna o total de mensagens
func (m *IMAPMailbox) Select(folder string) (uint32, error) {
	status, err := m.client.Select(folder, false)
	if err != nil {
		return 0, fmt.Errorf("falha ao selecionar %s: %w", folder, err)
	}
	return status.Messages, nil
}

// SearchAll retorna os ids de sequência de todas as mensagens da seleção
func (m *IMAPMailbox) SearchAll() ([]uint32, error) {
	ids, err := m.client.Search(imap.NewSearchCriteria())
	if err != nil {
		return nil, fmt.Errorf("falha ao pesquisar mensagens: %w", err)
	}
	return ids, nil
}

// FetchHeaders busca envelope e UID das mensagens no intervalo de sequência
func (m *IMAPMailbox) FetchHeaders(start, end uint32) ([]HeaderInfo, error) {
	seqset := new(imap.SeqSet)
	seqset.AddRange(start, end)

	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchUid}
	ch := make(chan *imap.Message, 16)
	done := make(chan error, 1)
	go func() {
		done <- m.client.Fetch(seqset, items, ch)
	}()

	var headers []HeaderInfo
	for msg := range ch {
		if msg.Envelope == nil {
			log.Printf("aviso: mensagem %d sem envelope interpretável, ignorada", msg.SeqNum)
			continue
		}
		headers = append(headers, HeaderInfo{
			SeqNum:    msg.SeqNum,
			UID:       msg.Uid,
			MessageID: msg.Envelope.MessageId,
			Subject:   msg.Envelope.Subject,
			Date:      formatDate(msg.Envelope.Date),
			From:      formatFrom(msg.Envelope.From),
		})
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("falha ao buscar cabeçalhos %d:%d: %w", start, end, err)
	}
	return headers, nil
}

// Copy copia a mensagem para a pasta de destino
func (m *IMAPMailbox) Copy(seqNum uint32, destFolder string) error {
	seqset := new(imap.SeqSet)
	seqset.AddNum(seqNum)
	if err := m.client.Copy(seqset, destFolder); err != nil {
		return fmt.Errorf("falha ao copiar mensagem %d para %s: %w", seqNum, destFolder, err)
	}
	return nil
}

// AddFlags acrescenta flags à mensagem, silenciosamente
func (m *IMAPMailbox) AddFlags(seqNum uint32, flags ...string) error {
	return m.storeFlags(seqNum, imap.AddFlags, flags)
}

// RemoveFlags remove flags da mensagem, silenciosamente
func (m *IMAPMailbox) RemoveFlags(seqNum uint32, flags ...string) error {
	return m.storeFlags(seqNum, imap.RemoveFlags, flags)
}

func (m *IMAPMailbox) storeFlags(seqNum uint32, op imap.FlagsOp, flags []string) error {
	seqset := new(imap.SeqSet)
	seqset.AddNum(seqNum)

	values := make([]interface{}, len(flags))
	for i, f := range flags {
		values[i] = f
	}

	item := imap.FormatFlagsOp(op, true)
	if err := m.client.Store(seqset, item, values, nil); err != nil {
		return fmt.Errorf("falha ao atualizar flags da mensagem %d: %w", seqNum, err)
	}
	return nil
}

// SearchMessageID verifica se o Message-Id existe na pasta selecionada
func (m *IMAPMailbox) SearchMessageID(messageID string) (bool, error) {
	criteria := imap.NewSearchCriteria()
	criteria.Header = textproto.MIMEHeader{"Message-Id": {messageID}}

	ids, err := m.client.Search(criteria)
	if err != nil {
		return false, fmt.Errorf("falha ao pesquisar Message-Id %s: %w", messageID, err)
	}
	return len(ids) > 0, nil
}

// Expunge remove fisicamente as mensagens marcadas com \Deleted
func (m *IMAPMailbox) Expunge() error {
	if err := m.client.Expunge(nil); err != nil {
		return fmt.Errorf("falha ao executar expunge: %w", err)
	}
	return nil
}

// Append grava a mensagem na pasta dada
func (m *IMAPMailbox) Append(folder string, flags []string, date time.Time, message []byte) error {
	if err := m.client.Append(folder, flags, date, bytes.NewReader(message)); err != nil {
		return fmt.Errorf("falha ao gravar mensagem em %s: %w", folder, err)
	}
	return nil
}

// Logout encerra a sessão IMAP
func (m *IMAPMailbox) Logout() error {
	return m.client.Logout()
}

// formatDate normaliza a data do envelope para compor a assinatura
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC1123Z)
}

// formatFrom normaliza o primeiro remetente do envelope
func formatFrom(from []*imap.Address) string {
	if len(from) == 0 || from[0] == nil {
		return ""
	}
	addr := from[0]
	if addr.PersonalName != "" {
		return fmt.Sprintf("%s <%s>", addr.PersonalName, addr.Address())
	}
	return addr.Address()
}
