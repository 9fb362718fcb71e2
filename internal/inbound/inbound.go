// Package inbound implements the message pipeline behind POST
// /api/bot/inbound: rate limit, user resolution, onboarding, subscription
// gate, then command or AI intent dispatch.
package inbound

import (
	"context"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dimasprakoso/catatduit/internal/advice"
	"github.com/dimasprakoso/catatduit/internal/ai"
	"github.com/dimasprakoso/catatduit/internal/budget"
	"github.com/dimasprakoso/catatduit/internal/command"
	"github.com/dimasprakoso/catatduit/internal/goal"
	"github.com/dimasprakoso/catatduit/internal/insight"
	"github.com/dimasprakoso/catatduit/internal/messages"
	"github.com/dimasprakoso/catatduit/internal/onboarding"
	"github.com/dimasprakoso/catatduit/internal/payment"
	"github.com/dimasprakoso/catatduit/internal/ratelimit"
	"github.com/dimasprakoso/catatduit/internal/report"
	"github.com/dimasprakoso/catatduit/types"
)

// Payload is the bridge-to-API inbound message contract.
type Payload struct {
	WaNumber    string `json:"waNumber" binding:"required,min=5"`
	MessageType string `json:"messageType" binding:"required,oneof=TEXT IMAGE"`
	Text        string `json:"text"`
	Caption     string `json:"caption"`
	ImageBase64 string `json:"imageBase64"`
	SentAt      string `json:"sentAt"`
}

// ReplyBody is what the bridge relays back to the chat user.
type ReplyBody struct {
	ReplyText     string `json:"replyText"`
	ImageBase64   string `json:"imageBase64,omitempty"`
	ImageMimeType string `json:"imageMimeType,omitempty"`
}

type Result struct {
	Status int
	Body   ReplyBody
}

func ok(text string) Result {
	return Result{Status: http.StatusOK, Body: ReplyBody{ReplyText: text}}
}

func badRequest(text string) Result {
	return Result{Status: http.StatusBadRequest, Body: ReplyBody{ReplyText: text}}
}

// IntentExtractor classifies free text into an intent plus transaction
// fields.
type IntentExtractor interface {
	ExtractIntent(ctx context.Context, rawInput string, now time.Time) (*ai.Extraction, error)
}

// ReceiptReader pulls raw text out of a receipt image.
type ReceiptReader interface {
	ExtractReceiptText(ctx context.Context, image []byte, mimeType string) (string, error)
}

type Processor struct {
	limiter       *ratelimit.Limiter
	users         types.UserStore
	messageLogs   types.MessageStore
	transactions  types.TransactionStore
	subscriptions types.SubscriptionStore
	aiLogs        types.AILogStore

	extractor IntentExtractor
	ocr       ReceiptReader

	reports    *report.Builder
	onboarding *onboarding.Service
	payments   *payment.Service
	budgets    *budget.Service
	goals      *goal.Service
	insights   *insight.Service
	advisor    *advice.Service

	log zerolog.Logger
	now func() time.Time
}

type ProcessorDeps struct {
	Limiter       *ratelimit.Limiter
	Users         types.UserStore
	MessageLogs   types.MessageStore
	Transactions  types.TransactionStore
	Subscriptions types.SubscriptionStore
	AILogs        types.AILogStore
	Extractor     IntentExtractor
	OCR           ReceiptReader
	Reports       *report.Builder
	Onboarding    *onboarding.Service
	Payments      *payment.Service
	Budgets       *budget.Service
	Goals         *goal.Service
	Insights      *insight.Service
	Advisor       *advice.Service
	Log           zerolog.Logger
}

func NewProcessor(d ProcessorDeps) *Processor {
	return &Processor{
		limiter:       d.Limiter,
		users:         d.Users,
		messageLogs:   d.MessageLogs,
		transactions:  d.Transactions,
		subscriptions: d.Subscriptions,
		aiLogs:        d.AILogs,
		extractor:     d.Extractor,
		ocr:           d.OCR,
		reports:       d.Reports,
		onboarding:    d.Onboarding,
		payments:      d.Payments,
		budgets:       d.Budgets,
		goals:         d.Goals,
		insights:      d.Insights,
		advisor:       d.Advisor,
		log:           d.Log,
		now:           time.Now,
	}
}

func parseSentAt(raw string, fallback time.Time) time.Time {
	if raw == "" {
		return fallback
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return fallback
	}
	return t
}

// Process runs one inbound message through the full pipeline and returns the
// HTTP status plus reply body the bridge should relay.
func (p *Processor) Process(ctx context.Context, payload Payload) (Result, error) {
	allowed, retryAfter := p.limiter.Admit(ctx, payload.WaNumber)
	if !allowed {
		return Result{
			Status: http.StatusTooManyRequests,
			Body:   ReplyBody{ReplyText: messages.RateLimited(retryAfter)},
		}, nil
	}

	user, _, err := p.users.FindOrCreateUserByWaNumber(ctx, payload.WaNumber)
	if err != nil {
		return Result{}, err
	}

	isImage := payload.MessageType == string(types.MessageTypeImage)
	content := payload.Text
	mediaRef := ""
	if isImage {
		content = payload.Caption
		if content == "" {
			content = "(image message)"
		}
		mediaRef = "uploaded:base64"
	}
	msgLog, err := p.messageLogs.CreateMessageLog(ctx, &types.MessageLog{
		UserID:           user.ID,
		MessageType:      types.MessageType(payload.MessageType),
		ContentOrCaption: content,
		MediaRef:         mediaRef,
		SentAt:           parseSentAt(payload.SentAt, p.now().UTC()),
	})
	if err != nil {
		return Result{}, err
	}

	if user.RegistrationStatus != types.RegistrationCompleted {
		input := payload.Text
		if isImage {
			input = payload.Caption
		}
		reply, err := p.onboarding.Handle(ctx, user, input, isImage)
		if err != nil {
			return Result{}, err
		}
		return ok(reply), nil
	}

	usable, err := p.hasUsableSubscription(ctx, user.ID)
	if err != nil {
		return Result{}, err
	}
	if !usable {
		_, link, err := p.payments.EnsurePendingSession(ctx, user.ID)
		if err != nil {
			return Result{}, err
		}
		return ok(messages.SubscriptionRequired(link)), nil
	}

	if isImage {
		return p.handleImage(ctx, user, msgLog.ID, payload)
	}
	return p.handleText(ctx, user, msgLog.ID, payload.Text)
}

func (p *Processor) hasUsableSubscription(ctx context.Context, userID string) (bool, error) {
	latest, err := p.subscriptions.GetLatestSubscription(ctx, userID)
	if err != nil {
		return false, err
	}
	if latest == nil {
		return false, nil
	}
	return latest.Status == types.SubscriptionActive || latest.Status == types.SubscriptionTrial, nil
}

func (p *Processor) handleText(ctx context.Context, user *types.User, messageID, text string) (Result, error) {
	cmd := command.Parse(text)
	switch cmd.Kind {
	case command.KindHelp:
		return ok(messages.Help()), nil

	case command.KindReport:
		return p.reportResult(ctx, user.ID, cmd.Period)

	case command.KindInsight:
		insightText, err := p.insights.Build(ctx, user.ID)
		if err != nil {
			return Result{}, err
		}
		p.logAnalysis(ctx, user.ID, messageID, types.AnalysisInsight, map[string]any{
			"insightText": insightText,
			"source":      "command",
		})
		return ok(insightText), nil

	case command.KindAdvice:
		question := cmd.Question
		if question == "" {
			question = messages.DefaultAdviceQuestion
		}
		adviceText, err := p.advisor.Answer(ctx, user.ID, question)
		if err != nil {
			return Result{}, err
		}
		p.logAnalysis(ctx, user.ID, messageID, types.AnalysisInsight, map[string]any{
			"insightText":  adviceText,
			"source":       "command_advice",
			"userQuestion": question,
		})
		return ok(adviceText), nil

	case command.KindBudgetSet:
		reply, err := p.budgets.Set(ctx, user.ID, cmd.Category, cmd.MonthlyLimit)
		if err != nil {
			return Result{}, err
		}
		return ok(reply), nil

	case command.KindGoalSet:
		g, err := p.goals.SetTarget(ctx, user.ID, cmd.TargetAmount)
		if err != nil {
			return Result{}, err
		}
		return ok(p.goalStatusText(g.TargetAmount, g.CurrentProgress)), nil

	case command.KindGoalStatus:
		st, err := p.goals.GetStatus(ctx, user.ID)
		if err != nil {
			return Result{}, err
		}
		if st == nil {
			return ok(messages.GoalNotSet()), nil
		}
		return ok(messages.GoalStatus(st.Target, st.Progress, st.Remaining, st.Percent)), nil
	}

	extraction, err := p.extractor.ExtractIntent(ctx, text, p.now())
	if err != nil {
		return Result{}, err
	}
	p.logAnalysis(ctx, user.ID, messageID, types.AnalysisIntent, extraction)

	switch extraction.Intent {
	case ai.IntentHelp:
		return ok(messages.Help()), nil

	case ai.IntentRequestReport:
		period := types.PeriodMonthly
		if extraction.ReportPeriod != nil {
			period = types.ParseReportPeriod(*extraction.ReportPeriod)
		}
		return p.reportResult(ctx, user.ID, period)

	case ai.IntentRequestInsight:
		insightText, err := p.insights.Build(ctx, user.ID)
		if err != nil {
			return Result{}, err
		}
		p.logAnalysis(ctx, user.ID, messageID, types.AnalysisInsight, map[string]any{
			"insightText": insightText,
			"source":      "intent",
		})
		return ok(insightText), nil

	case ai.IntentRequestAdvice:
		question := text
		if extraction.AdviceQuery != nil && *extraction.AdviceQuery != "" {
			question = *extraction.AdviceQuery
		}
		adviceText, err := p.advisor.Answer(ctx, user.ID, question)
		if err != nil {
			return Result{}, err
		}
		p.logAnalysis(ctx, user.ID, messageID, types.AnalysisInsight, map[string]any{
			"insightText":  adviceText,
			"source":       "intent_advice",
			"userQuestion": question,
		})
		return ok(adviceText), nil
	}

	if !extraction.IsExtractable() {
		return ok(messages.TransactionUnreadable()), nil
	}
	return p.recordTransaction(ctx, user.ID, messageID, extraction, types.SourceText, text)
}

func (p *Processor) handleImage(ctx context.Context, user *types.User, messageID string, payload Payload) (Result, error) {
	if payload.ImageBase64 == "" {
		return badRequest(messages.ImageMissing()), nil
	}
	image, err := base64.StdEncoding.DecodeString(payload.ImageBase64)
	if err != nil {
		return badRequest(messages.ImageMissing()), nil
	}

	ocrText, err := p.ocr.ExtractReceiptText(ctx, image, "image/jpeg")
	if err != nil {
		p.log.Error().Err(err).Str("user_id", user.ID).Msg("OCR failed")
		return ok(messages.OCRFailed()), nil
	}

	combined := ocrText
	if payload.Caption != "" {
		combined = payload.Caption + "\n" + ocrText
	}
	extraction, err := p.extractor.ExtractIntent(ctx, combined, p.now())
	if err != nil {
		return Result{}, err
	}
	p.logAnalysis(ctx, user.ID, messageID, types.AnalysisExtraction, map[string]any{
		"extraction": extraction,
		"ocrText":    ocrText,
	})

	if !extraction.IsExtractable() {
		return ok(messages.OCRIncomplete()), nil
	}
	return p.recordTransaction(ctx, user.ID, messageID, extraction, types.SourceOCR, ocrText)
}

func (p *Processor) recordTransaction(ctx context.Context, userID, messageID string, extraction *ai.Extraction, source types.TransactionSource, rawText string) (Result, error) {
	tx := &types.Transaction{
		UserID:     userID,
		Type:       types.TransactionType(*extraction.Type),
		Amount:     *extraction.Amount,
		Category:   *extraction.Category,
		OccurredAt: extraction.OccurredAtOrNow(p.now().UTC()),
		Source:     source,
		RawText:    rawText,
	}
	if extraction.Merchant != nil {
		tx.Merchant = *extraction.Merchant
	}
	if extraction.Note != nil {
		tx.Note = *extraction.Note
	}

	created, err := p.transactions.CreateTransaction(ctx, tx)
	if err != nil {
		return Result{}, err
	}
	if _, err := p.goals.Refresh(ctx, userID); err != nil {
		return Result{}, err
	}
	if source == types.SourceText {
		p.logAnalysis(ctx, userID, messageID, types.AnalysisExtraction, extraction)
	}

	alert, err := p.budgets.CheckAlert(ctx, userID, created.Category, created.OccurredAt)
	if err != nil {
		return Result{}, err
	}
	reply := messages.TransactionConfirmed(created)
	if alert != "" {
		reply += "\n" + alert
	}
	return ok(reply), nil
}

func (p *Processor) reportResult(ctx context.Context, userID string, period types.ReportPeriod) (Result, error) {
	rep, err := p.reports.Build(ctx, userID, period)
	if err != nil {
		return Result{}, err
	}
	body := ReplyBody{ReplyText: rep.Text}
	if len(rep.Image) > 0 {
		body.ImageBase64 = base64.StdEncoding.EncodeToString(rep.Image)
		body.ImageMimeType = rep.ImageMime
	}
	return Result{Status: http.StatusOK, Body: body}, nil
}

func (p *Processor) goalStatusText(target, progress float64) string {
	if target <= 0 {
		return messages.GoalNotSet()
	}
	remaining := target - progress
	if remaining < 0 {
		remaining = 0
	}
	percent := progress / target * 100
	if percent > 100 {
		percent = 100
	}
	return messages.GoalStatus(target, progress, remaining, percent)
}

// logAnalysis records the AI audit row. Failures are logged and swallowed so
// bookkeeping never breaks the user reply.
func (p *Processor) logAnalysis(ctx context.Context, userID, messageID string, analysisType types.AnalysisType, payload any) {
	if err := p.aiLogs.CreateAIAnalysisLog(ctx, userID, messageID, analysisType, payload); err != nil {
		p.log.Warn().Err(err).Str("user_id", userID).Str("type", string(analysisType)).Msg("failed to store ai analysis log")
	}
}
