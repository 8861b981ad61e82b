package mailbox

import "time"

// HeaderInfo representa os campos de identificação de uma mensagem, obtidos
// do envelope durante a varredura de uma pasta
type HeaderInfo struct {
	SeqNum    uint32
	UID       uint32
	MessageID string
	Subject   string
	Date      string
	From      string
}

// Flags IMAP usadas pelo mecanismo de arquivamento
const (
	FlagSeen    = "\\Seen"
	FlagFlagged = "\\Flagged"
	FlagDeleted = "\\Deleted"
)

// Mailbox é a interface de acesso à caixa de correio remota. Todas as
// operações atuam sobre a pasta selecionada por Select; a numeração de
// sequência é 1-based e contígua, válida apenas dentro da seleção corrente,
// enquanto UIDs são estáveis entre sessões.
type Mailbox interface {
	// Select seleciona a pasta e retorna o total de mensagens nela
	Select(folder string) (uint32, error)

	// SearchAll retorna os ids de sequência de todas as mensagens da pasta
	// selecionada, em ordem
	SearchAll() ([]uint32, error)

	// FetchHeaders busca os cabeçalhos de identificação das mensagens no
	// intervalo [start, end] de sequência. Mensagens sem envelope
	// interpretável são omitidas do resultado, com aviso
	FetchHeaders(start, end uint32) ([]HeaderInfo, error)

	// Copy copia a mensagem para a pasta de destino
	Copy(seqNum uint32, destFolder string) error

	// AddFlags acrescenta flags à mensagem
	AddFlags(seqNum uint32, flags ...string) error

	// RemoveFlags remove flags da mensagem
	RemoveFlags(seqNum uint32, flags ...string) error

	// SearchMessageID verifica se a pasta selecionada contém uma mensagem
	// com o cabeçalho Message-Id dado; usado na verificação pós-cópia. UIDs
	// não servem para isso: cada pasta tem seu próprio espaço de UIDs e a
	// cópia recebe um UID novo no destino.
	SearchMessageID(messageID string) (bool, error)

	// Expunge remove fisicamente as mensagens marcadas com \Deleted na
	// pasta selecionada
	Expunge() error

	// Append grava uma mensagem completa em formato RFC 822 na pasta dada
	Append(folder string, flags []string, date time.Time, message []byte) error

	// Logout encerra a sessão
	Logout() error
}
