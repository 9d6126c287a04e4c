package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"policyscraper/internal/model"
	"policyscraper/internal/storage"
)

const (
	DefaultContainer  = "meta-standards"
	MasterSummaryName = "master_summary.json"
	mainPageArtifact  = "00_main_page.json"
)

var (
	unsafeFilenameChars = regexp.MustCompile(`[^\w\s-]`)
	filenameSeparators  = regexp.MustCompile(`[-\s]+`)
)

// Publisher hands the documents of a finished session to a Store.
type Publisher struct {
	store     storage.Store
	container string
	newID     func() string
	logger    *zap.Logger
}

func NewPublisher(store storage.Store, container string, logger *zap.Logger) *Publisher {
	if container == "" {
		container = DefaultContainer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		store:     store,
		container: container,
		newID:     uuid.NewString,
		logger:    logger,
	}
}

// Publish stores one document per target and a master summary under a new
// session id. Documents that fail to store are left out of the returned
// URLs; the error then carries the storage_error code and describes every
// failure. Publish never changes report.
func (p *Publisher) Publish(ctx context.Context, r *model.SessionReport) (*model.StorageURLs, error) {
	urls := &model.StorageURLs{
		SessionID: p.newID(),
		Targets:   make(map[string]string, len(r.Results)),
	}

	filenames := ArtifactNames(r)
	var errs []error

	for i, res := range r.Results {
		doc, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.Metadata.SectionName, err))
			continue
		}
		u, err := p.store.Store(ctx, p.container, path.Join(urls.SessionID, filenames[i]), doc)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", res.Metadata.SectionName, err))
			continue
		}
		urls.Targets[res.Metadata.SectionName] = u
	}

	summary := SummaryProjection(r)
	offset := 0
	if summary.MainPageSummary != nil {
		summary.MainPageSummary.Filename = filenames[0]
		offset = 1
	}
	for i := range summary.SectionsSummary {
		summary.SectionsSummary[i].Filename = filenames[i+offset]
	}
	doc, err := json.MarshalIndent(summary, "", "  ")
	if err == nil {
		urls.Summary, err = p.store.Store(ctx, p.container, path.Join(urls.SessionID, MasterSummaryName), doc)
	}
	if err != nil {
		errs = append(errs, fmt.Errorf("master summary: %w", err))
	}

	if len(errs) > 0 {
		err := model.Errorf(model.ESTORAGE, "%v", errors.Join(errs...))
		p.logger.Warn("failed to store session documents",
			zap.String("session_id", urls.SessionID),
			zap.Int("failed", len(errs)),
			zap.Error(err),
		)
		return urls, err
	}

	p.logger.Info("stored session documents",
		zap.String("session_id", urls.SessionID),
		zap.Int("documents", len(urls.Targets)+1),
	)
	return urls, nil
}

// ArtifactNames returns the file name of each result: 00_main_page.json for
// the main page and NN_<section>.json for the sections, numbered from 01.
func ArtifactNames(r *model.SessionReport) []string {
	names := make([]string, len(r.Results))
	n := 0
	for i, res := range r.Results {
		if r.IncludeMainPage && i == 0 {
			names[i] = mainPageArtifact
			continue
		}
		n++
		names[i] = fmt.Sprintf("%02d_%s.json", n, SafeFilename(res.Metadata.SectionName))
	}
	return names
}

// SafeFilename keeps word characters, turning runs of spaces and dashes into
// single underscores.
func SafeFilename(name string) string {
	s := unsafeFilenameChars.ReplaceAllString(name, "")
	s = filenameSeparators.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return "section"
	}
	return s
}
