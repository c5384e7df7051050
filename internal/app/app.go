// Package app wires the sign recognition server together: store,
// classifier, extractor factory, and the session registry.
package app

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/tishanW98/Sinhala-Sign-Language-LMS/internal/classify"
	"github.com/tishanW98/Sinhala-Sign-Language-LMS/internal/config"
	"github.com/tishanW98/Sinhala-Sign-Language-LMS/internal/extract"
	"github.com/tishanW98/Sinhala-Sign-Language-LMS/internal/session"
	"github.com/tishanW98/Sinhala-Sign-Language-LMS/internal/store"
)

// devLabels back the mock classifier when running without a trained model.
var devLabels = []string{"ayubowan", "sthuthiyi", "karunakara", "hari", "naha"}

// App owns the long-lived collaborators of the serving process. Per-client
// state lives in the registry; everything here is shared and process-wide.
type App struct {
	config     *config.Config
	log        *logrus.Logger
	store      *store.Store
	classifier classify.Classifier
	registry   *session.Registry
}

// New builds the application. A classifier that cannot be started is a
// startup failure and aborts here; per-frame faults later on are handled
// inside the sessions.
func New(cfg *config.Config, log *logrus.Logger) (*App, error) {
	st, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	classifier, err := newClassifier(cfg)
	if err != nil {
		st.Close()
		return nil, err
	}
	log.WithField("labels", classifier.Labels()).Info("classifier ready")

	// Keep the label catalog in sync with the live model.
	if err := st.Labels().Sync(classifier.Labels()); err != nil {
		classifier.Close()
		st.Close()
		return nil, fmt.Errorf("sync labels: %w", err)
	}

	registry := session.NewRegistry(
		session.Config{
			SequenceLength:  cfg.SequenceLength,
			SmoothingWindow: cfg.SmoothingWindow,
			Threshold:       cfg.Threshold,
		},
		newExtractorFactory(cfg),
		classifier,
		log,
	)

	return &App{
		config:     cfg,
		log:        log,
		store:      st,
		classifier: classifier,
		registry:   registry,
	}, nil
}

func newClassifier(cfg *config.Config) (classify.Classifier, error) {
	if cfg.MockModel {
		return classify.NewMockClassifier(devLabels), nil
	}

	classifier, err := classify.NewModelClassifier(classify.Config{
		ScriptPath:     cfg.ClassifierScript,
		ModelPath:      cfg.ModelPath,
		LabelsPath:     cfg.LabelsPath,
		SequenceLength: cfg.SequenceLength,
	})
	if err != nil {
		return nil, fmt.Errorf("start classifier: %w", err)
	}
	return classifier, nil
}

func newExtractorFactory(cfg *config.Config) extract.Factory {
	if cfg.MockModel {
		return func() (extract.Extractor, error) {
			return extract.NewMockExtractor(), nil
		}
	}

	extractCfg := extract.DefaultConfig()
	extractCfg.ScriptPath = cfg.ExtractorScript
	return func() (extract.Extractor, error) {
		return extract.NewHolisticExtractor(extractCfg)
	}
}

// Store returns the persistence layer.
func (a *App) Store() *store.Store {
	return a.store
}

// Registry returns the session registry.
func (a *App) Registry() *session.Registry {
	return a.registry
}

// Close tears the process down: drains remaining sessions, then closes the
// shared classifier and the store.
func (a *App) Close() {
	a.registry.Drain()

	if err := a.classifier.Close(); err != nil {
		a.log.WithError(err).Warn("closing classifier")
	}
	if err := a.store.Close(); err != nil {
		a.log.WithError(err).Warn("closing store")
	}
}
