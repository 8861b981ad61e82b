package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cpknight/email-automation/archive"
	"github.com/cpknight/email-automation/config"
	"github.com/cpknight/email-automation/mailbox"
	"github.com/cpknight/email-automation/recovery"
	"github.com/cpknight/email-automation/storage"
	"github.com/cpknight/email-automation/summary"
)

var configPath string

func main() {
	// Todas as mensagens de console saem com horário UTC
	log.SetFlags(log.LstdFlags | log.LUTC)

	root := &cobra.Command{
		Use:           "email-automation",
		Short:         "Arquivamento em lote de mensagens entre pastas IMAP, com retomada segura",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "caminho do arquivo de configuração")
	root.AddCommand(archiveCmd(), classifyCmd(), summaryCmd(), shellCmd())

	if err := root.Execute(); err != nil {
		log.Printf("erro: %v", err)
		os.Exit(1)
	}
}

// archiveCmd executa o arquivamento em lote das pastas de origem
func archiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archive",
		Short: "Move as mensagens das pastas de origem para a pasta de arquivo",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			store := storage.NewJSONStore(cfg.Logs.Transaction, cfg.Logs.Recovery)

			mbox, err := mailbox.Connect(&cfg.IMAP)
			if err != nil {
				return err
			}
			defer mbox.Logout()

			cancel := installSignalHandler()
			result := archive.NewOrchestrator(mbox, store, &cfg.Archive, cancel).Run()
			reportRun(store, result)
			return nil
		},
	}
}

// classifyCmd roteia as mensagens da pasta de entrada pelas categorias do
// classificador externo
func classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify",
		Short: "Classifica e distribui as mensagens da pasta de entrada",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			classifier, err := archive.NewExecClassifier(cfg.Classifier.Command)
			if err != nil {
				return err
			}
			store := storage.NewJSONStore(cfg.Logs.Transaction, cfg.Logs.Recovery)

			mbox, err := mailbox.Connect(&cfg.IMAP)
			if err != nil {
				return err
			}
			defer mbox.Logout()

			cancel := installSignalHandler()
			result := archive.NewRouter(mbox, store, classifier, cfg, cancel).Run()
			reportRun(store, result)
			return nil
		},
	}
}

// summaryCmd gera o relatório da pasta de entrada como rascunho na caixa de
// correio
func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Grava um rascunho com o resumo da pasta de entrada",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}

			mbox, err := mailbox.Connect(&cfg.IMAP)
			if err != nil {
				return err
			}
			defer mbox.Logout()

			cancel := installSignalHandler()
			return summary.NewReporter(mbox, &cfg.Summary, cfg.IMAP.Username, cancel).Run()
		},
	}
}

// shellCmd abre o console interativo de inspeção dos logs
func shellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Abre o shell de recuperação (status, recovery, clear)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}
			store := storage.NewJSONStore(cfg.Logs.Transaction, cfg.Logs.Recovery)
			recovery.NewShell(recovery.NewReporter(store), os.Stdin, os.Stdout).Run()
			return nil
		},
	}
}

// installSignalHandler liga o primeiro SIGINT/SIGTERM ao sinal de
// cancelamento cooperativo; sinais repetidos só geram novo aviso
func installSignalHandler() *archive.CancelFlag {
	cancel := &archive.CancelFlag{}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		for sig := range sigChan {
			if cancel.Cancel() {
				log.Printf("sinal %v recebido, finalizando o lote atual antes de encerrar...", sig)
			} else {
				log.Printf("encerramento já em andamento, aguardando o lote atual")
			}
		}
	}()
	return cancel
}

// reportRun imprime o resumo da execução recém-gravada
func reportRun(store storage.LogStore, summary *storage.RecoverySummary) {
	fmt.Print(recovery.NewReporter(store).RecoveryReport())
	if summary.Interrupted {
		log.Printf("execução interrompida; o progresso foi salvo e a próxima execução retoma de onde parou")
	}
}
