package archive

import (
	"fmt"
	"time"

	"github.com/cpknight/email-automation/mailbox"
)

// fakeMessage é uma mensagem em memória com flags mutáveis
type fakeMessage struct {
	uid    uint32
	header mailbox.HeaderInfo
	flags  map[string]bool
	raw    []byte
}

func (m *fakeMessage) clone() *fakeMessage {
	flags := make(map[string]bool, len(m.flags))
	for f, v := range m.flags {
		flags[f] = v
	}
	return &fakeMessage{uid: m.uid, header: m.header, flags: flags, raw: m.raw}
}

type fakeFolder struct {
	messages []*fakeMessage
}

// fakeMailbox implementa mailbox.Mailbox em memória, com numeração de
// sequência 1-based que é refeita a cada expunge, como em um servidor real
type fakeMailbox struct {
	folders  map[string]*fakeFolder
	selected string
	nextUID  uint32

	copies   int
	expunges map[string]int

	// copyHook, quando definido, é consultado antes de cada cópia e pode
	// injetar uma falha
	copyHook func(source string, uid uint32) error
	// vanish faz as próximas n cópias do UID "sumirem": a cópia reporta
	// sucesso mas a mensagem não aparece no destino
	vanish map[uint32]int
}

func newFakeMailbox(folders ...string) *fakeMailbox {
	m := &fakeMailbox{
		folders:  make(map[string]*fakeFolder),
		nextUID:  100,
		expunges: make(map[string]int),
		vanish:   make(map[uint32]int),
	}
	for _, name := range folders {
		m.folders[name] = &fakeFolder{}
	}
	return m
}

// addMessage insere uma mensagem com os quatro campos de identificação e
// retorna o UID atribuído
func (m *fakeMailbox) addMessage(folder, messageID, subject, date, from string) uint32 {
	m.nextUID++
	m.folders[folder].messages = append(m.folders[folder].messages, &fakeMessage{
		uid: m.nextUID,
		header: mailbox.HeaderInfo{
			MessageID: messageID,
			Subject:   subject,
			Date:      date,
			From:      from,
		},
		flags: make(map[string]bool),
	})
	return m.nextUID
}

func (m *fakeMailbox) addSimpleMessages(folder string, n int) {
	for i := 0; i < n; i++ {
		m.addMessage(folder,
			fmt.Sprintf("<msg-%s-%d@example.org>", folder, len(m.folders[folder].messages)),
			fmt.Sprintf("assunto %d", i),
			"Mon, 02 Jan 2006 15:04:05 -0700",
			"Alice <alice@example.org>")
	}
}

func (m *fakeMailbox) current() *fakeFolder {
	return m.folders[m.selected]
}

func (m *fakeMailbox) message(seqNum uint32) (*fakeMessage, error) {
	f := m.current()
	if f == nil {
		return nil, fmt.Errorf("nenhuma pasta selecionada")
	}
	if seqNum < 1 || int(seqNum) > len(f.messages) {
		return nil, fmt.Errorf("sequência %d fora do intervalo", seqNum)
	}
	return f.messages[seqNum-1], nil
}

func (m *fakeMailbox) Select(folder string) (uint32, error) {
	f, ok := m.folders[folder]
	if !ok {
		return 0, fmt.Errorf("pasta %s não existe", folder)
	}
	m.selected = folder
	return uint32(len(f.messages)), nil
}

func (m *fakeMailbox) SearchAll() ([]uint32, error) {
	f := m.current()
	ids := make([]uint32, len(f.messages))
	for i := range f.messages {
		ids[i] = uint32(i + 1)
	}
	return ids, nil
}

func (m *fakeMailbox) FetchHeaders(start, end uint32) ([]mailbox.HeaderInfo, error) {
	f := m.current()
	if end > uint32(len(f.messages)) {
		end = uint32(len(f.messages))
	}

	var headers []mailbox.HeaderInfo
	for seq := start; seq <= end; seq++ {
		msg := f.messages[seq-1]
		h := msg.header
		h.SeqNum = seq
		h.UID = msg.uid
		headers = append(headers, h)
	}
	return headers, nil
}

func (m *fakeMailbox) Copy(seqNum uint32, destFolder string) error {
	msg, err := m.message(seqNum)
	if err != nil {
		return err
	}
	if m.copyHook != nil {
		if err := m.copyHook(m.selected, msg.uid); err != nil {
			return err
		}
	}
	m.copies++

	if m.vanish[msg.uid] > 0 {
		m.vanish[msg.uid]--
		return nil
	}

	dest, ok := m.folders[destFolder]
	if !ok {
		return fmt.Errorf("pasta %s não existe", destFolder)
	}
	// A cópia recebe um UID novo no destino, como em um servidor real
	copied := msg.clone()
	m.nextUID++
	copied.uid = m.nextUID
	dest.messages = append(dest.messages, copied)
	return nil
}

func (m *fakeMailbox) AddFlags(seqNum uint32, flags ...string) error {
	msg, err := m.message(seqNum)
	if err != nil {
		return err
	}
	for _, f := range flags {
		msg.flags[f] = true
	}
	return nil
}

func (m *fakeMailbox) RemoveFlags(seqNum uint32, flags ...string) error {
	msg, err := m.message(seqNum)
	if err != nil {
		return err
	}
	for _, f := range flags {
		delete(msg.flags, f)
	}
	return nil
}

func (m *fakeMailbox) SearchMessageID(messageID string) (bool, error) {
	for _, msg := range m.current().messages {
		if msg.header.MessageID == messageID {
			return true, nil
		}
	}
	return false, nil
}

func (m *fakeMailbox) Expunge() error {
	f := m.current()
	kept := f.messages[:0]
	for _, msg := range f.messages {
		if !msg.flags[mailbox.FlagDeleted] {
			kept = append(kept, msg)
		}
	}
	f.messages = kept
	m.expunges[m.selected]++
	return nil
}

func (m *fakeMailbox) Append(folder string, flags []string, date time.Time, message []byte) error {
	f, ok := m.folders[folder]
	if !ok {
		return fmt.Errorf("pasta %s não existe", folder)
	}
	m.nextUID++
	msg := &fakeMessage{uid: m.nextUID, flags: make(map[string]bool)}
	for _, flag := range flags {
		msg.flags[flag] = true
	}
	msg.raw = message
	f.messages = append(f.messages, msg)
	return nil
}

func (m *fakeMailbox) Logout() error {
	return nil
}

// signatures retorna o multiconjunto de assinaturas presentes na pasta
func (m *fakeMailbox) signatures(folder string) []string {
	var sigs []string
	for _, msg := range m.folders[folder].messages {
		sigs = append(sigs, SignatureOf(msg.header))
	}
	return sigs
}
