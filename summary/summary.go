package summary

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/cpknight/email-automation/archive"
	"github.com/cpknight/email-automation/config"
	"github.com/cpknight/email-automation/mailbox"
	"github.com/cpknight/email-automation/storage"
)

// Classificações etárias das mensagens da caixa de entrada
const (
	ClassRecent  = "Recent"
	ClassPending = "Pending"
	ClassOther   = "Other"
)

// recentCutoff separa mensagens recém-chegadas das pendentes de tratamento
const recentCutoff = 24 * time.Hour

// SenderCount representa um remetente e o total de mensagens dele na pasta
type SenderCount struct {
	Sender string
	Count  int
}

// Stats representa o agregado de uma varredura da pasta de entrada
type Stats struct {
	Folder     string
	Total      int
	Recent     int
	Pending    int
	Other      int
	DateStart  string
	DateEnd    string
	TopSenders []SenderCount

	entries []mailbox.HeaderInfo
}

// Reporter varre a pasta de entrada em lotes, agrega estatísticas por idade e
// por remetente e grava o relatório como rascunho na própria caixa de correio
type Reporter struct {
	mbox   mailbox.Mailbox
	cfg    *config.SummaryConfig
	sender string
	cancel *archive.CancelFlag

	// now é injetável para os testes controlarem o corte de 24 horas
	now func() time.Time
}

// NewReporter cria o gerador de relatório sobre a caixa de correio. sender é
// o endereço do usuário, usado como remetente e destinatário do rascunho.
func NewReporter(mbox mailbox.Mailbox, cfg *config.SummaryConfig, sender string, cancel *archive.CancelFlag) *Reporter {
	return &Reporter{
		mbox:   mbox,
		cfg:    cfg,
		sender: sender,
		cancel: cancel,
		now:    time.Now,
	}
}

// Run varre a pasta configurada e grava o rascunho do relatório. Uma pasta
// vazia não produz rascunho. O cancelamento entre lotes abandona a execução
// sem gravar nada.
func (r *Reporter) Run() error {
	stats, err := r.Collect()
	if err != nil {
		return err
	}
	if stats == nil {
		return nil
	}

	if err := r.appendDraft(stats); err != nil {
		return err
	}
	log.Printf("relatório de %s gravado em %s (%d mensagens)", stats.Folder, r.cfg.DraftsFolder, stats.Total)
	return nil
}

// Collect varre a pasta em lotes e retorna as estatísticas agregadas. Retorna
// nil sem erro quando a pasta está vazia ou a execução foi cancelada.
func (r *Reporter) Collect() (*Stats, error) {
	folder := r.cfg.SourceFolder
	total, err := r.mbox.Select(folder)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		log.Printf("pasta %s vazia, relatório não gerado", folder)
		return nil, nil
	}

	var headers []mailbox.HeaderInfo
	for _, w := range archive.Windows(total, r.cfg.BatchSize) {
		if r.cancel != nil && r.cancel.Cancelled() {
			log.Printf("varredura de %s cancelada, relatório não gerado", folder)
			return nil, nil
		}
		log.Printf("varrendo lote %d-%d de %d em %s", w.Start, w.End, total, folder)
		batch, err := r.mbox.FetchHeaders(w.Start, w.End)
		if err != nil {
			return nil, err
		}
		headers = append(headers, batch...)
	}

	return r.aggregate(folder, headers), nil
}

func (r *Reporter) aggregate(folder string, headers []mailbox.HeaderInfo) *Stats {
	stats := &Stats{Folder: folder, Total: len(headers), entries: headers}
	cutoff := r.now().Add(-recentCutoff)

	senders := make(map[string]int)
	var oldest, newest time.Time
	for _, h := range headers {
		senders[h.From]++

		when, err := time.Parse(time.RFC1123Z, h.Date)
		if err != nil {
			stats.Other++
			continue
		}
		if when.After(cutoff) {
			stats.Recent++
		} else {
			stats.Pending++
		}
		if oldest.IsZero() || when.Before(oldest) {
			oldest = when
		}
		if newest.IsZero() || when.After(newest) {
			newest = when
		}
	}

	if !oldest.IsZero() {
		stats.DateStart = oldest.UTC().Format(time.RFC1123Z)
		stats.DateEnd = newest.UTC().Format(time.RFC1123Z)
	}
	stats.TopSenders = topSenders(senders, 5)
	return stats
}

// topSenders retorna os n remetentes mais frequentes, em ordem decrescente;
// empates são resolvidos pelo endereço para manter a saída determinística
func topSenders(counts map[string]int, n int) []SenderCount {
	ranked := make([]SenderCount, 0, len(counts))
	for sender, count := range counts {
		ranked = append(ranked, SenderCount{Sender: sender, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Sender < ranked[j].Sender
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func (r *Reporter) appendDraft(stats *Stats) error {
	now := r.now().UTC()
	subject := fmt.Sprintf("%s Folder Summary as at %s", stats.Folder, storage.UTCTimestamp())
	body := renderHTML(stats)

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", r.sender)
	fmt.Fprintf(&msg, "To: %s\r\n", r.sender)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "List-ID: InboxSummary\r\n")
	fmt.Fprintf(&msg, "Date: %s\r\n", now.Format(time.RFC1123Z))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	if err := r.mbox.Append(r.cfg.DraftsFolder, nil, now, []byte(msg.String())); err != nil {
		return fmt.Errorf("falha ao gravar rascunho do relatório: %w", err)
	}
	return nil
}

// renderHTML monta o corpo do relatório: parágrafo de visão geral, remetentes
// mais frequentes e a tabela de mensagens
func renderHTML(stats *Stats) string {
	var b strings.Builder
	b.WriteString("<html><body>\n")
	fmt.Fprintf(&b, "<h1>%s Folder Summary</h1>\n", stats.Folder)
	fmt.Fprintf(&b, "<p>Covering the period from %s to %s, %d messages were analyzed. ",
		stats.DateStart, stats.DateEnd, stats.Total)
	fmt.Fprintf(&b, "Of these, %d are recent arrivals (received within the last 24 hours), %d are pending processing (older than 24 hours), and %d fall into a miscellaneous category.</p>\n",
		stats.Recent, stats.Pending, stats.Other)

	if len(stats.TopSenders) > 0 {
		b.WriteString("<h2>Frequent senders</h2>\n<ul>\n")
		for _, s := range stats.TopSenders {
			fmt.Fprintf(&b, "<li>%s (%d)</li>\n", s.Sender, s.Count)
		}
		b.WriteString("</ul>\n")
	}

	b.WriteString("<h2>Messages</h2>\n<table>\n")
	for _, h := range stats.entries {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%s</td></tr>\n", h.From, h.Subject, h.Date)
	}
	b.WriteString("</table>\n</body></html>\n")
	return b.String()
}
