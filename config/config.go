package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config representa a configuração global da ferramenta de arquivamento
type Config struct {
	IMAP       IMAPConfig       `mapstructure:"imap"`
	Archive    ArchiveConfig    `mapstructure:"archive"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Summary    SummaryConfig    `mapstructure:"summary"`
	Logs       LogsConfig       `mapstructure:"logs"`
}

// IMAPConfig representa a configuração de acesso ao servidor IMAP
type IMAPConfig struct {
	Server   string `mapstructure:"server"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	TLS      bool   `mapstructure:"tls"` // false usa STARTTLS sobre conexão comum
}

// ArchiveConfig representa as pastas e o tamanho de lote do arquivamento
type ArchiveConfig struct {
	SourceFolders []string `mapstructure:"source_folders"`
	DestFolder    string   `mapstructure:"dest_folder"`
	BatchSize     uint32   `mapstructure:"batch_size"`
}

// ClassifierConfig representa o classificador externo e as pastas de destino
// por categoria
type ClassifierConfig struct {
	SourceFolder             string   `mapstructure:"source_folder"`
	DestFolderNotifications  string   `mapstructure:"dest_folder_notifications"`
	DestFolderCorrespondence string   `mapstructure:"dest_folder_correspondence"`
	Command                  []string `mapstructure:"command"`
}

// SummaryConfig representa a pasta analisada pelo relatório de caixa de
// entrada e a pasta de rascunhos que o recebe
type SummaryConfig struct {
	SourceFolder string `mapstructure:"source_folder"`
	DraftsFolder string `mapstructure:"drafts_folder"`
	BatchSize    uint32 `mapstructure:"batch_size"`
}

// LogsConfig representa os caminhos dos arquivos de log de transações e de
// recuperação
type LogsConfig struct {
	Transaction string `mapstructure:"transaction"`
	Recovery    string `mapstructure:"recovery"`
}

var cfg *Config

// LoadConfig carrega configurações do arquivo config.yaml
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		// Usar diretório atual se nenhum caminho for fornecido
		dir, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		configPath = filepath.Join(dir, "config.yaml")
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.SetDefault("archive.batch_size", 33)
	viper.SetDefault("summary.source_folder", "INBOX")
	viper.SetDefault("summary.drafts_folder", "Drafts")
	viper.SetDefault("summary.batch_size", 33)
	viper.SetDefault("logs.transaction", "archive_transaction_log.json")
	viper.SetDefault("logs.recovery", "archive_recovery_log.json")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("erro ao ler arquivo de configuração: %w", err)
	}

	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("erro ao processar configuração: %w", err)
	}

	return cfg, nil
}

// GetConfig retorna a configuração atual
func GetConfig() *Config {
	return cfg
}
