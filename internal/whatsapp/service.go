package whatsapp

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/llm"
	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/order"
	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/pos"
	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/refresh"
	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/session"
	"github.com/wulinbill/whatsapp-loyverse-order-bot/internal/speech"
)

// ReceiptCreator submits a confirmed order to the POS.
type ReceiptCreator interface {
	CreateReceipt(ctx context.Context, note string, lines []pos.LineItem) (string, error)
}

// Archiver keeps inbound voice notes in object storage. Optional; nil
// disables archiving.
type Archiver interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

type Service struct {
	adapter   Adapter
	snapshots *refresh.Store
	sessions  *session.Store
	extractor llm.Client
	speech    speech.Transcriber
	posClient ReceiptCreator
	receipts  order.Repository
	archive   Archiver
	taxRate   float64
}

func NewService(
	adapter Adapter,
	snapshots *refresh.Store,
	sessions *session.Store,
	extractor llm.Client,
	transcriber speech.Transcriber,
	posClient ReceiptCreator,
	receipts order.Repository,
	archive Archiver,
	taxRate float64,
) *Service {
	return &Service{
		adapter:   adapter,
		snapshots: snapshots,
		sessions:  sessions,
		extractor: extractor,
		speech:    transcriber,
		posClient: posClient,
		receipts:  receipts,
		archive:   archive,
		taxRate:   taxRate,
	}
}

// --------------------------------------------------
// Conversation entry point
// --------------------------------------------------
func (s *Service) HandleMessage(ctx context.Context, in Inbound) (string, error) {
	body := strings.TrimSpace(in.Body)

	if in.MediaURL != "" && strings.HasPrefix(in.MediaType, "audio/") {
		audio, contentType, err := s.adapter.DownloadMedia(ctx, in.MediaURL)
		if err != nil {
			return "", fmt.Errorf("download voice note: %w", err)
		}
		s.archiveVoiceNote(ctx, in.From, audio, contentType)
		text, err := s.speech.Transcribe(ctx, audio, contentType)
		if err != nil {
			return "", fmt.Errorf("transcribe voice note: %w", err)
		}
		body = strings.TrimSpace(text)
	}

	sess := s.sessions.Get(in.From)
	if in.ProfileName != "" {
		sess.CustomerName = in.ProfileName
	}

	if sess.State == session.StateConfirming {
		return s.handleConfirmation(ctx, sess, body)
	}
	return s.handleOrdering(ctx, sess, body)
}

// --------------------------------------------------
// Ordering / clarifying
// --------------------------------------------------
func (s *Service) handleOrdering(ctx context.Context, sess *session.Session, body string) (string, error) {
	snap := s.snapshots.Current()
	if snap == nil {
		return unavailableReply(), nil
	}

	if body == "" {
		s.sessions.Save(sess)
		return greetingReply(sess.CustomerName), nil
	}

	fresh, err := llm.ExtractOrder(ctx, s.extractor, body, menuNames(snap))
	if err != nil {
		return "", fmt.Errorf("extract order: %w", err)
	}

	lines := fresh
	if sess.State == session.StateClarifying && sess.Pending != nil {
		lines = mergeClarified(sess.PendingLines, sess.Pending.Problems, fresh)
	}

	if len(lines) == 0 {
		sess.State = session.StateOrdering
		s.sessions.Save(sess)
		return notUnderstoodReply(), nil
	}

	ord, clar := order.Normalize(lines, snap.Catalog, snap.Index, snap.Rules)
	if clar != nil {
		sess.State = session.StateClarifying
		sess.PendingLines = lines
		sess.Pending = clar
		sess.Draft = nil
		s.sessions.Save(sess)
		return clarificationReply(clar), nil
	}

	sess.State = session.StateConfirming
	sess.PendingLines = nil
	sess.Pending = nil
	sess.Draft = ord
	s.sessions.Save(sess)

	tax := s.tax(ord.SubtotalCents)
	return summaryReply(ord, tax, ord.SubtotalCents+tax), nil
}

// --------------------------------------------------
// Confirmation / POS submission
// --------------------------------------------------
func (s *Service) handleConfirmation(ctx context.Context, sess *session.Session, body string) (string, error) {
	switch {
	case isAffirmative(body):
		return s.submit(ctx, sess)
	case isNegative(body):
		s.sessions.Reset(sess.Phone)
		return cancelledReply(), nil
	default:
		s.sessions.Save(sess)
		return repromptConfirmReply(), nil
	}
}

func (s *Service) submit(ctx context.Context, sess *session.Session) (string, error) {
	ord := sess.Draft
	if ord == nil {
		s.sessions.Reset(sess.Phone)
		return notUnderstoodReply(), nil
	}

	note := fmt.Sprintf("WhatsApp %s", sess.Phone)
	if sess.CustomerName != "" {
		note = fmt.Sprintf("WhatsApp %s (%s)", sess.Phone, sess.CustomerName)
	}

	items, noteExtra := posLineItems(ord)
	if noteExtra != "" {
		note += " | " + noteExtra
	}

	posReceiptID, err := s.posClient.CreateReceipt(ctx, note, items)
	if err != nil {
		return "", fmt.Errorf("create pos receipt: %w", err)
	}

	tax := s.tax(ord.SubtotalCents)
	total := ord.SubtotalCents + tax

	receipt := order.Receipt{
		ID:             uuid.New().String(),
		CustomerPhone:  sess.Phone,
		PosReceiptID:   posReceiptID,
		SubtotalCents:  ord.SubtotalCents,
		TaxCents:       tax,
		TotalCents:     total,
		CatalogVersion: ord.CatalogVersion,
		Lines:          ord.Lines,
		CreatedAt:      time.Now(),
	}
	if err := s.receipts.SaveReceipt(ctx, &receipt); err != nil {
		log.Printf("receipt log save failed for %s: %v", posReceiptID, err)
	}

	s.sessions.Reset(sess.Phone)
	return confirmedReply(posReceiptID, total), nil
}

func (s *Service) archiveVoiceNote(ctx context.Context, phone string, audio []byte, contentType string) {
	if s.archive == nil {
		return
	}
	key := fmt.Sprintf("voice-notes/%s/%s", phone, uuid.New().String())
	if _, err := s.archive.Put(ctx, key, audio, contentType); err != nil {
		log.Printf("voice note archive failed for %s: %v", phone, err)
	}
}

func (s *Service) tax(subtotalCents int64) int64 {
	return int64(math.Round(float64(subtotalCents) * s.taxRate))
}

// --------------------------------------------------
// Helpers
// --------------------------------------------------

// posLineItems maps the normalized order onto POS line items. Part counts
// have no variant of their own, so they travel in the receipt note.
func posLineItems(ord *order.Order) ([]pos.LineItem, string) {
	var (
		items []pos.LineItem
		parts []string
	)
	for _, line := range ord.Lines {
		if line.Kind == order.KindPart {
			parts = append(parts, fmt.Sprintf("%d %s", line.Quantity, line.Name))
			continue
		}
		items = append(items, pos.LineItem{
			VariantID: line.Ref,
			Quantity:  line.Quantity,
			Price:     pos.Dollars(line.PriceCents),
		})
	}
	return items, strings.Join(parts, ", ")
}

// mergeClarified replaces each problem line with the customer's answer,
// in order. Extra answer lines are new items and go at the end; problems
// the answer skipped stay put and get re-asked on the next pass.
func mergeClarified(pending []order.Line, problems []order.Problem, fresh []order.Line) []order.Line {
	merged := make([]order.Line, len(pending))
	copy(merged, pending)

	used := 0
	for _, p := range problems {
		if used >= len(fresh) {
			break
		}
		if p.LineIndex >= 0 && p.LineIndex < len(merged) {
			merged[p.LineIndex] = fresh[used]
			used++
		}
	}
	merged = append(merged, fresh[used:]...)
	return merged
}

func menuNames(snap *refresh.Snapshot) []string {
	items := snap.Catalog.Items()
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Name)
	}
	return names
}

var affirmatives = map[string]bool{
	"si": true, "sí": true, "yes": true, "ok": true, "okay": true,
	"confirmo": true, "confirmar": true, "dale": true, "claro": true,
	"correcto": true,
}

var negatives = map[string]bool{
	"no": true, "cancel": true, "cancela": true, "cancelar": true,
	"nada": true,
}

func isAffirmative(body string) bool {
	return affirmatives[strings.ToLower(strings.TrimSpace(body))]
}

func isNegative(body string) bool {
	return negatives[strings.ToLower(strings.TrimSpace(body))]
}
