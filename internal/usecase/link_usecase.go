package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/linkscribe/api-service/internal/domain/entity"
	"github.com/linkscribe/api-service/internal/domain/repository"
	"github.com/linkscribe/api-service/internal/domain/service"
)

// Error definitions for link usecase
var (
	ErrInvalidRequest  = errors.New("invalid request")
	ErrLinkNotFound    = errors.New("link not found")
	ErrHistoryDisabled = errors.New("link history disabled")
)

// Pagination bounds for history listings
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// URLInput is the request body of every page operation. InURL is the field
// name used by earlier LinkScribe clients and is read when URL is empty.
type URLInput struct {
	URL   string `json:"url"`
	InURL string `json:"inURL,omitempty"`
}

// PredictOutput is the result of classifying a page
type PredictOutput struct {
	Prediction   []string   `json:"prediction"`
	WebText      string     `json:"web_text"`
	ModelName    string     `json:"model_name"`
	ModelVersion int        `json:"model_version"`
	LinkID       *uuid.UUID `json:"link_id,omitempty"`
}

// TitleOutput is the title of a page
type TitleOutput struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Found bool   `json:"found"`
}

// LinkOutput represents a link history entry
type LinkOutput struct {
	ID           uuid.UUID `json:"id"`
	URL          string    `json:"url"`
	Domain       string    `json:"domain"`
	Label        string    `json:"label"`
	ModelName    string    `json:"model_name"`
	ModelVersion int       `json:"model_version"`
	TextLength   int       `json:"text_length"`
	LatencyMs    int64     `json:"latency_ms"`
	CreatedAt    string    `json:"created_at"`
}

// LinkListOutput represents paginated link history
type LinkListOutput struct {
	Links   []*LinkOutput `json:"links"`
	Total   int64         `json:"total"`
	Limit   int           `json:"limit"`
	Offset  int           `json:"offset"`
	HasMore bool          `json:"has_more"`
}

// LabelStatsOutput counts history entries per label
type LabelStatsOutput struct {
	Labels map[string]int64 `json:"labels"`
	Total  int64            `json:"total"`
}

// PipelineObserver receives pipeline measurements
type PipelineObserver interface {
	ObservePrediction(label string)
	ObserveError(reason string)
	ObserveExtraction(elapsed time.Duration)
}

// LinkUsecase defines the interface for link classification business logic
type LinkUsecase interface {
	Predict(ctx context.Context, input *URLInput) (*PredictOutput, error)
	Title(ctx context.Context, input *URLInput) (*TitleOutput, error)
	Preview(ctx context.Context, input *URLInput) ([]byte, error)
	ListLinks(ctx context.Context, limit, offset int) (*LinkListOutput, error)
	GetLink(ctx context.Context, id uuid.UUID) (*LinkOutput, error)
	LabelStats(ctx context.Context) (*LabelStatsOutput, error)
	ModelInfo() service.ModelInfo
	HistoryEnabled() bool
}

type linkUsecase struct {
	extractor  service.TextExtractor
	classifier service.Classifier
	previewer  service.PagePreviewer
	links      repository.LinkRepository
	observer   PipelineObserver
	log        *zap.Logger
}

// LinkUsecaseOption configures optional collaborators of the link usecase
type LinkUsecaseOption func(*linkUsecase)

// WithHistory records every successful prediction in repo
func WithHistory(repo repository.LinkRepository) LinkUsecaseOption {
	return func(u *linkUsecase) {
		u.links = repo
	}
}

// WithObserver reports pipeline measurements to o
func WithObserver(o PipelineObserver) LinkUsecaseOption {
	return func(u *linkUsecase) {
		if o != nil {
			u.observer = o
		}
	}
}

// WithLogger sets the usecase logger
func WithLogger(log *zap.Logger) LinkUsecaseOption {
	return func(u *linkUsecase) {
		if log != nil {
			u.log = log
		}
	}
}

// NewLinkUsecase creates a new link usecase
func NewLinkUsecase(extractor service.TextExtractor, classifier service.Classifier, previewer service.PagePreviewer, opts ...LinkUsecaseOption) LinkUsecase {
	u := &linkUsecase{
		extractor:  extractor,
		classifier: classifier,
		previewer:  previewer,
		observer:   nopObserver{},
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *linkUsecase) Predict(ctx context.Context, input *URLInput) (*PredictOutput, error) {
	url, err := requestURL(input)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	text, err := u.extractor.ExtractText(ctx, url)
	u.observer.ObserveExtraction(time.Since(start))
	if err != nil {
		return nil, u.fail("extract text", url, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, u.fail("extract text", url, fmt.Errorf("%w: page has no visible text", service.ErrExtractionFailed))
	}

	result, err := u.classifier.Classify(ctx, text)
	if err != nil {
		return nil, u.fail("classify", url, err)
	}
	if len(result.Labels) != 1 {
		return nil, u.fail("classify", url, fmt.Errorf("%w: got %d labels", service.ErrInconsistentModel, len(result.Labels)))
	}

	label := result.Labels[0]
	u.observer.ObservePrediction(label)

	out := &PredictOutput{
		Prediction:   result.Labels,
		WebText:      text,
		ModelName:    result.ModelName,
		ModelVersion: result.ModelVersion,
	}

	if u.links != nil {
		link := entity.NewLink(url, label, result.ModelName, result.ModelVersion)
		link.SetMetrics(len(text), time.Since(start))
		if err := u.links.Create(ctx, link); err != nil {
			u.observer.ObserveError("history_write")
			u.log.Warn("Failed to record link history", zap.String("url", url), zap.Error(err))
		} else {
			out.LinkID = &link.ID
		}
	}

	u.log.Debug("Classified page",
		zap.String("url", url),
		zap.String("label", label),
		zap.Int("text_length", len(text)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return out, nil
}

func (u *linkUsecase) Title(ctx context.Context, input *URLInput) (*TitleOutput, error) {
	url, err := requestURL(input)
	if err != nil {
		return nil, err
	}

	title, err := u.extractor.ExtractTitle(ctx, url)
	if err != nil {
		return nil, u.fail("extract title", url, err)
	}

	return &TitleOutput{URL: url, Title: title.Title, Found: title.Found}, nil
}

func (u *linkUsecase) Preview(ctx context.Context, input *URLInput) ([]byte, error) {
	url, err := requestURL(input)
	if err != nil {
		return nil, err
	}

	png, err := u.previewer.Capture(ctx, url)
	if err != nil {
		return nil, u.fail("capture preview", url, err)
	}
	return png, nil
}

func (u *linkUsecase) ListLinks(ctx context.Context, limit, offset int) (*LinkListOutput, error) {
	if u.links == nil {
		return nil, ErrHistoryDisabled
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	links, total, err := u.links.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	outputs := make([]*LinkOutput, len(links))
	for i, l := range links {
		outputs[i] = toLinkOutput(l)
	}

	return &LinkListOutput{
		Links:   outputs,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+limit) < total,
	}, nil
}

func (u *linkUsecase) GetLink(ctx context.Context, id uuid.UUID) (*LinkOutput, error) {
	if u.links == nil {
		return nil, ErrHistoryDisabled
	}

	link, err := u.links.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, ErrLinkNotFound
	}

	return toLinkOutput(link), nil
}

func (u *linkUsecase) LabelStats(ctx context.Context) (*LabelStatsOutput, error) {
	if u.links == nil {
		return nil, ErrHistoryDisabled
	}

	counts, err := u.links.CountByLabel(ctx)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, n := range counts {
		total += n
	}
	return &LabelStatsOutput{Labels: counts, Total: total}, nil
}

func (u *linkUsecase) ModelInfo() service.ModelInfo {
	return u.classifier.Info()
}

func (u *linkUsecase) HistoryEnabled() bool {
	return u.links != nil
}

// fail counts and logs a failed pipeline step and returns err unchanged.
func (u *linkUsecase) fail(step, url string, err error) error {
	reason := ErrorReason(err)
	u.observer.ObserveError(reason)
	if reason == "internal" || reason == "inconsistent_model" {
		u.log.Error("Pipeline step failed", zap.String("step", step), zap.String("url", url), zap.Error(err))
	} else {
		u.log.Info("Pipeline step failed", zap.String("step", step), zap.String("url", url), zap.String("reason", reason), zap.Error(err))
	}
	return err
}

// ErrorReason names the failure class of a pipeline error for metrics and logs
func ErrorReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, service.ErrInvalidURL):
		return "invalid_request"
	case errors.Is(err, service.ErrFetchFailed):
		return "fetch_failed"
	case errors.Is(err, service.ErrExtractionFailed):
		return "extraction_failed"
	case errors.Is(err, service.ErrClassifierUnavailable):
		return "classifier_unavailable"
	case errors.Is(err, service.ErrInconsistentModel):
		return "inconsistent_model"
	case errors.Is(err, service.ErrPreviewDisabled):
		return "preview_disabled"
	case errors.Is(err, service.ErrPreviewFailed):
		return "preview_failed"
	default:
		return "internal"
	}
}

func requestURL(input *URLInput) (string, error) {
	if input == nil {
		return "", ErrInvalidRequest
	}
	url := strings.TrimSpace(input.URL)
	if url == "" {
		url = strings.TrimSpace(input.InURL)
	}
	if url == "" {
		return "", fmt.Errorf("%w: url is required", ErrInvalidRequest)
	}
	return url, nil
}

func toLinkOutput(l *entity.Link) *LinkOutput {
	return &LinkOutput{
		ID:           l.ID,
		URL:          l.URL,
		Domain:       l.Domain,
		Label:        l.Label,
		ModelName:    l.ModelName,
		ModelVersion: l.ModelVersion,
		TextLength:   l.TextLength,
		LatencyMs:    l.LatencyMs,
		CreatedAt:    l.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

type nopObserver struct{}

func (nopObserver) ObservePrediction(string)        {}
func (nopObserver) ObserveError(string)             {}
func (nopObserver) ObserveExtraction(time.Duration) {}
