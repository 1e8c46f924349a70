package exporter

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"igsaved/internal/downloader"
	"igsaved/pkg/archive"
	"igsaved/pkg/config"
	apperrors "igsaved/pkg/errors"
	"igsaved/pkg/fetcher"
	"igsaved/pkg/instagram"
	"igsaved/pkg/ledger"
	"igsaved/pkg/lister"
	"igsaved/pkg/logger"
	"igsaved/pkg/metadata"
	"igsaved/pkg/models"
	"igsaved/pkg/storage"
	"igsaved/pkg/telemetry"
)

// eventBuffer keeps a slow reader from stalling the download loop on every
// event
const eventBuffer = 64

// Request describes one export
type Request struct {
	SessionID string
	// CollectionID selects a collection; empty means all saved posts
	CollectionID string
	// Limit caps the number of listed posts; 0 means no cap
	Limit int
	// Archive is one of config.ArchiveNone, ArchiveFull or ArchiveMetadata
	Archive string
}

// Options configures an Exporter
type Options struct {
	OutputDir  string
	LedgerPath string
	// CheckpointEvery saves the ledger after every N successful posts.
	// 0 saves only once, after the loop.
	CheckpointEvery int
}

// Exporter drives a run over a remote service
type Exporter struct {
	service  instagram.Service
	opts     Options
	archiver *archive.Archiver
	reporter telemetry.Reporter
	logger   logger.Logger
	now      func() time.Time
}

// Option customizes an Exporter
type Option func(*Exporter)

// WithReporter sends per-post failures to r
func WithReporter(r telemetry.Reporter) Option {
	return func(e *Exporter) {
		if r != nil {
			e.reporter = r
		}
	}
}

// WithClock overrides the time source used for metadata timestamps
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) { e.now = now }
}

// New creates an Exporter
func New(service instagram.Service, opts Options, log logger.Logger, options ...Option) *Exporter {
	if log == nil {
		log = logger.NewNopLogger()
	}
	e := &Exporter{
		service:  service,
		opts:     opts,
		archiver: archive.New(log),
		reporter: telemetry.Nop{},
		logger:   log.WithField("component", "exporter"),
		now:      time.Now,
	}
	for _, o := range options {
		o(e)
	}
	return e
}

// Start runs req on a new goroutine and streams its events. The last event
// is EventFinished carrying the summary and any fatal error, after which the
// channel is closed. The caller must drain the channel.
func (e *Exporter) Start(ctx context.Context, req Request) <-chan Event {
	events := make(chan Event, eventBuffer)
	go func() {
		defer close(events)
		e.run(ctx, req, events)
	}()
	return events
}

// Run performs req synchronously. A non-nil error is returned only for
// failures that abort the run: authentication and an unusable output
// directory. Everything else is reflected in the Summary.
func (e *Exporter) Run(ctx context.Context, req Request) (Summary, error) {
	return e.run(ctx, req, nil)
}

type run struct {
	*Exporter
	ctx     context.Context
	req     Request
	events  chan<- Event
	log     logger.Logger
	summary Summary
	started time.Time
}

func (e *Exporter) run(ctx context.Context, req Request, events chan<- Event) (Summary, error) {
	r := &run{
		Exporter: e,
		ctx:      ctx,
		req:      req,
		events:   events,
		started:  time.Now(),
	}
	r.summary.RunID = uuid.NewString()
	r.log = e.logger.WithField("run_id", r.summary.RunID)

	err := r.execute()
	r.summary.Duration = time.Since(r.started)

	if err != nil {
		r.log.WithError(err).Error("export aborted")
	} else {
		r.log.InfoWithFields("export finished", map[string]interface{}{
			"successful": r.summary.Successful,
			"failed":     r.summary.Failed,
			"skipped":    r.summary.Skipped,
			"cancelled":  r.summary.Cancelled,
			"duration":   r.summary.Duration.String(),
		})
	}

	s := r.summary
	final := StageDone
	if s.Cancelled {
		final = StageCancelled
	}
	r.emit(Event{Kind: EventFinished, Stage: final, Summary: &s, Err: err})
	return s, err
}

func (r *run) emit(ev Event) {
	if r.events != nil {
		r.events <- ev
	}
}

func (r *run) stage(s Stage, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	r.log.InfoWithFields(msg, map[string]interface{}{"stage": string(s)})
	r.emit(Event{Kind: EventStage, Stage: s, Message: msg})
}

func (r *run) warn(s Stage, msg string, err error) {
	r.log.WithError(err).Warn(msg)
	r.emit(Event{Kind: EventWarning, Stage: s, Message: msg, Err: err})
}

func (r *run) execute() error {
	r.stage(StageIdle, "starting export")

	user, err := r.service.Login(r.ctx, r.req.SessionID)
	if err != nil {
		return apperrors.Auth("login failed", err)
	}
	if user == nil {
		user = &models.User{}
	}
	r.summary.Username = user.Username
	r.stage(StageAuthenticated, "logged in as @%s", user.Username)

	layout, err := storage.NewLayout(r.opts.OutputDir)
	if err != nil {
		return apperrors.Config("output directory unusable", err)
	}
	meta, err := metadata.NewWriter(layout.Metadata())
	if err != nil {
		return apperrors.Config("metadata directory unusable", err)
	}

	posts, err := lister.New(r.service, r.log).ListCollection(r.ctx, r.req.CollectionID, r.req.Limit)
	if err != nil {
		if r.ctx.Err() != nil {
			r.summary.Cancelled = true
			return nil
		}
		r.warn(StageListed, "listing failed", err)
	}
	r.summary.Found = len(posts)
	if len(posts) == 0 {
		r.summary.NoPosts = true
		r.stage(StageDone, "no posts found")
		return nil
	}
	r.stage(StageListed, "found %d posts", len(posts))

	led := ledger.Open(r.opts.LedgerPath, r.log)
	work, skipped := led.Filter(posts)
	r.summary.Skipped = skipped
	r.stage(StageFiltering, "%d new, %d already downloaded", len(work), skipped)

	if len(work) == 0 {
		r.summary.UpToDate = true
		r.stage(StageDone, "all saved posts are already downloaded")
		return nil
	}

	r.download(work, layout, meta, led)

	r.stage(StageFinalizing, "saving ledger")
	if err := led.Save(); err != nil {
		r.summary.LedgerErr = err
		r.warn(StageFinalizing, "failed to save ledger", err)
	}

	if r.summary.Cancelled {
		r.stage(StageCancelled, "export cancelled after %d posts", r.summary.Total)
		return nil
	}

	r.archive(layout.Root())
	r.stage(StageDone, "export complete")
	return nil
}

func (r *run) download(work []models.Post, layout *storage.Layout, meta *metadata.Writer, led *ledger.Ledger) {
	total := len(work)
	r.stage(StageDownloading, "downloading %d posts", total)

	f := fetcher.New(r.service, layout, r.log)
	process := func(ctx context.Context, post models.Post) (downloader.Outcome, error) {
		res, err := f.Fetch(ctx, post)
		if err != nil {
			return downloader.Outcome{}, apperrors.Fetch("media download failed", err)
		}
		if _, err := meta.Save(metadata.Extract(post, r.now())); err != nil {
			return downloader.Outcome{}, apperrors.Metadata("metadata save failed", err)
		}
		return downloader.Outcome{Path: res.Path, Files: res.Files, Bytes: res.Bytes}, nil
	}

	worker := downloader.NewWorker(process, r.log)
	sinceCheckpoint := 0

	for res := range worker.Start(r.ctx, work) {
		post := res.Job.Post
		ev := Event{
			Stage:  StageDownloading,
			PostID: post.ID,
			Owner:  post.OwnerName(),
			Media:  metadata.TypeName(post.Media),
			Index:  res.Job.Index,
			Total:  total,
		}
		if res.Started {
			ev.Kind = EventPostStarted
			r.emit(ev)
			continue
		}

		r.summary.Total++

		logger.LogPostResult(r.log, post.ID, post.OwnerName(), models.KindName(post.Media), res.Err)

		if !res.Success() {
			r.summary.Failed++
			ev.Kind = EventPostFailed
			ev.Err = res.Err
			r.reporter.Report(res.Err, map[string]string{
				"post_id": post.ID,
				"run_id":  r.summary.RunID,
			})
			r.emit(ev)
			continue
		}

		led.MarkDownloaded(post.ID)
		r.summary.Successful++
		ev.Kind = EventPostDone
		r.emit(ev)

		sinceCheckpoint++
		if r.opts.CheckpointEvery > 0 && sinceCheckpoint >= r.opts.CheckpointEvery {
			sinceCheckpoint = 0
			if err := led.Save(); err != nil {
				r.warn(StageDownloading, "checkpoint save failed", err)
			}
		}
	}

	if r.ctx.Err() != nil && r.summary.Total < total {
		r.summary.Cancelled = true
	}
}

func (r *run) archive(root string) {
	var (
		path string
		err  error
	)
	switch r.req.Archive {
	case config.ArchiveNone:
		return
	case config.ArchiveMetadata:
		r.stage(StageFinalizing, "creating metadata archive")
		path, err = r.archiver.CreateMetadataOnly(root)
	default:
		r.stage(StageFinalizing, "creating archive")
		path, err = r.archiver.CreateBackup(root)
	}

	if err != nil {
		r.summary.ArchiveErr = err
		r.warn(StageFinalizing, "failed to create archive", err)
		return
	}

	r.summary.ArchivePath = path
	if info, statErr := os.Stat(path); statErr == nil {
		r.summary.ArchiveSize = info.Size()
	}
}
