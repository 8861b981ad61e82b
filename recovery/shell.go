package recovery

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const helpText = `Comandos disponíveis:
  status    mostra o estado do log de transações
  recovery  mostra o relatório da última execução
  clear     remove os dois arquivos de log (pede confirmação)
  help      mostra esta ajuda
  quit      encerra o shell
`

// Shell é o console interativo de inspeção dos logs de recuperação
type Shell struct {
	reporter *Reporter
	in       *bufio.Scanner
	out      io.Writer
}

// NewShell cria o shell sobre o apresentador e os fluxos de entrada e saída
func NewShell(reporter *Reporter, in io.Reader, out io.Writer) *Shell {
	return &Shell{
		reporter: reporter,
		in:       bufio.NewScanner(in),
		out:      out,
	}
}

// Run executa o laço de comandos até quit ou fim da entrada
func (s *Shell) Run() {
	fmt.Fprintln(s.out, "Shell de recuperação do arquivamento. Digite 'help' para os comandos.")
	for {
		fmt.Fprint(s.out, "recovery> ")
		if !s.in.Scan() {
			fmt.Fprintln(s.out)
			return
		}

		switch strings.ToLower(strings.TrimSpace(s.in.Text())) {
		case "":
			continue
		case "status":
			fmt.Fprint(s.out, s.reporter.TransactionStatus())
		case "recovery":
			fmt.Fprint(s.out, s.reporter.RecoveryReport())
		case "clear":
			s.clear()
		case "help":
			fmt.Fprint(s.out, helpText)
		case "quit", "exit":
			fmt.Fprintln(s.out, "Até mais.")
			return
		default:
			fmt.Fprintln(s.out, "Comando desconhecido. Digite 'help' para os comandos.")
		}
	}
}

// clear pede confirmação antes de remover os arquivos de log
func (s *Shell) clear() {
	fmt.Fprint(s.out, "Remover o log de transações e o relatório de recuperação? [y/N]: ")
	if !s.in.Scan() {
		return
	}

	switch strings.ToLower(strings.TrimSpace(s.in.Text())) {
	case "y", "yes", "s", "sim":
		if err := s.reporter.Clear(); err != nil {
			fmt.Fprintf(s.out, "Erro ao remover os logs: %v\n", err)
			return
		}
		fmt.Fprintln(s.out, "Logs removidos; a próxima execução começa do zero.")
	default:
		fmt.Fprintln(s.out, "Operação cancelada.")
	}
}
