package archive

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpknight/email-automation/config"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		output  string
		want    Category
		wantErr bool
	}{
		{"notifications", CategoryNotifications, false},
		{"correspondence", CategoryCorrespondence, false},
		{"  Correspondence\n", CategoryCorrespondence, false},
		{"NOTIFICATIONS", CategoryNotifications, false},
		{"spam", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseCategory(tt.output)
		if tt.wantErr {
			assert.Error(t, err, tt.output)
			continue
		}
		require.NoError(t, err, tt.output)
		assert.Equal(t, tt.want, got)
	}
}

func TestSafeClassify_FallsBackOnError(t *testing.T) {
	oracle := ClassifierFunc(func(MessageRef) (Category, error) {
		return "", errors.New("oráculo indisponível")
	})
	assert.Equal(t, CategoryFallback, SafeClassify(oracle, MessageRef{}))
}

func TestSafeClassify_PassesThroughValidCategory(t *testing.T) {
	oracle := ClassifierFunc(func(MessageRef) (Category, error) {
		return CategoryCorrespondence, nil
	})
	assert.Equal(t, CategoryCorrespondence, SafeClassify(oracle, MessageRef{}))
}

func TestNewExecClassifier_RequiresCommand(t *testing.T) {
	_, err := NewExecClassifier(nil)
	assert.Error(t, err)
}

// O roteador distribui por categoria e usa a mesma mecânica de lote
func TestRouter_RoutesByCategory(t *testing.T) {
	mbox := newFakeMailbox("INBOX", "Correspondence", "Notifications")
	mbox.addSimpleMessages("INBOX", 6)

	// Mensagens de assunto par são correspondência
	oracle := ClassifierFunc(func(ref MessageRef) (Category, error) {
		if ref.SeqNum%2 == 0 {
			return CategoryCorrespondence, nil
		}
		return CategoryNotifications, nil
	})

	store := newTestStore(t)
	cfg := &config.Config{
		Archive: config.ArchiveConfig{BatchSize: 33},
		Classifier: config.ClassifierConfig{
			SourceFolder:             "INBOX",
			DestFolderNotifications:  "Notifications",
			DestFolderCorrespondence: "Correspondence",
		},
	}

	router := NewRouter(mbox, store, oracle, cfg, nil)
	router.transferer.sleep = func(time.Duration) {}
	summary := router.Run()

	st := summary.FolderStats["INBOX"]
	require.NotNil(t, st)
	assert.Equal(t, 6, st.Found)
	assert.Equal(t, 6, st.Moved)
	assert.Equal(t, 0, st.Failed)

	assert.Len(t, mbox.folders["Notifications"].messages, 3)
	assert.Len(t, mbox.folders["Correspondence"].messages, 3)
	assert.Empty(t, mbox.folders["INBOX"].messages)
	assert.Equal(t, 1, mbox.expunges["INBOX"])
}

// Falha do oráculo não derruba a execução: a mensagem vai para a reserva
func TestRouter_OracleFailureUsesFallback(t *testing.T) {
	mbox := newFakeMailbox("INBOX", "Correspondence", "Notifications")
	mbox.addSimpleMessages("INBOX", 2)

	oracle := ClassifierFunc(func(MessageRef) (Category, error) {
		return "", errors.New("resposta fora do vocabulário")
	})

	store := newTestStore(t)
	cfg := &config.Config{
		Archive: config.ArchiveConfig{BatchSize: 10},
		Classifier: config.ClassifierConfig{
			SourceFolder:             "INBOX",
			DestFolderNotifications:  "Notifications",
			DestFolderCorrespondence: "Correspondence",
		},
	}

	router := NewRouter(mbox, store, oracle, cfg, nil)
	router.transferer.sleep = func(time.Duration) {}
	summary := router.Run()

	assert.Equal(t, 2, summary.FolderStats["INBOX"].Moved)
	assert.Len(t, mbox.folders["Notifications"].messages, 2)
	assert.Empty(t, mbox.folders["Correspondence"].messages)
}
