package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/bovipred/bovipred-backend/internal/clients/mlapi"
	livestockrepo "github.com/bovipred/bovipred-backend/internal/data/repos/livestock"
	mlrepo "github.com/bovipred/bovipred-backend/internal/data/repos/ml"
	types "github.com/bovipred/bovipred-backend/internal/domain"
	"github.com/bovipred/bovipred-backend/internal/domain/audit"
	"github.com/bovipred/bovipred-backend/internal/domain/ml"
	"github.com/bovipred/bovipred-backend/internal/pkg/apperr"
	"github.com/bovipred/bovipred-backend/internal/platform/ctxutil"
	"github.com/bovipred/bovipred-backend/internal/platform/logger"
)

// PredictionStats is the aggregate accuracy payload of the statistics
// endpoint.
type PredictionStats struct {
	Total          int64   `json:"total_predicciones"`
	Validated      int64   `json:"predicciones_validadas"`
	Correct        int64   `json:"predicciones_correctas"`
	HitRate        float64 `json:"tasa_acierto"`
	MeanConfidence float64 `json:"promedio_confianza"`
}

type PredictionService interface {
	// Predict scores one insemination event. On Conflict the existing
	// prediction is returned alongside the error.
	Predict(ctx context.Context, iatfRecordID uuid.UUID) (*types.Prediction, error)
	List(ctx context.Context, limit, offset int) ([]*types.Prediction, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Prediction, error)
	ValidateOutcome(ctx context.Context, id uuid.UUID, observed bool) (*types.Prediction, error)
	Stats(ctx context.Context) (*PredictionStats, error)
}

type predictionService struct {
	db          *gorm.DB
	log         *logger.Logger
	predictions mlrepo.PredictionRepo
	iatf        livestockrepo.IATFRecordRepo
	client      *mlapi.Client
	strict      bool
	activity    ActivityLogService
}

// NewPredictionService wires the scorer. client may be nil, in which
// case every prediction uses the local heuristic. strict makes an
// unavailable upstream fail the request with 503 instead of degrading.
func NewPredictionService(
	db *gorm.DB,
	log *logger.Logger,
	predictions mlrepo.PredictionRepo,
	iatf livestockrepo.IATFRecordRepo,
	client *mlapi.Client,
	strict bool,
	activity ActivityLogService,
) PredictionService {
	return &predictionService{
		db:          db,
		log:         log.With("service", "PredictionService"),
		predictions: predictions,
		iatf:        iatf,
		client:      client,
		strict:      strict,
		activity:    activity,
	}
}

func (s *predictionService) Predict(ctx context.Context, iatfRecordID uuid.UUID) (*types.Prediction, error) {
	if iatfRecordID == uuid.Nil {
		return nil, apperr.ValidationField("iatf_record_id", "requerido")
	}

	rec, err := s.iatf.GetByID(ctx, nil, iatfRecordID)
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	if rec == nil {
		return nil, apperr.NotFound("registro IATF no encontrado")
	}
	if rec.Animal == nil {
		return nil, apperr.NotFound("animal del registro no encontrado")
	}

	existing, err := s.predictions.GetByIATFRecordID(ctx, nil, iatfRecordID)
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	if existing != nil {
		return existing, apperr.Conflict("ya existe una prediccion para este registro IATF")
	}

	payload, err := BuildFeaturePayload(rec, rec.Animal, rec.Sire)
	if err != nil {
		return nil, err
	}

	pred, err := s.score(ctx, rec, payload)
	if err != nil {
		return nil, err
	}
	pred.ID = uuid.New()
	pred.IATFRecordID = rec.ID
	if actor := ctxutil.UserID(ctx); actor != uuid.Nil {
		id := actor
		pred.UserID = &id
	}

	if err := s.predictions.Create(ctx, nil, pred); err != nil {
		return nil, apperr.FromDB(err)
	}

	s.activity.Record(ctx, audit.ActionPredict, "Prediction", &pred.ID,
		fmt.Sprintf("Prediccion generada para registro IATF %s", rec.ID))
	return pred, nil
}

// score runs the external service when it is configured and healthy,
// falling back to the local heuristic otherwise. In strict mode the
// fallback is disabled and upstream failures surface as 503.
func (s *predictionService) score(ctx context.Context, rec *types.IATFRecord, payload mlapi.FeaturePayload) (*types.Prediction, error) {
	if s.client == nil {
		return s.scoreHeuristic(rec), nil
	}

	if err := s.client.Health(ctx); err != nil {
		if s.strict {
			return nil, apperr.Upstream(err)
		}
		s.log.Warn("prediction service unavailable, using local heuristic", "error", err)
		return s.scoreHeuristic(rec), nil
	}

	resp, err := s.client.Predict(ctx, payload)
	if err != nil {
		if s.strict {
			return nil, apperr.Upstream(err)
		}
		s.log.Warn("prediction call failed, using local heuristic", "error", err)
		return s.scoreHeuristic(rec), nil
	}
	return mapUpstreamResponse(resp), nil
}

func (s *predictionService) scoreHeuristic(rec *types.IATFRecord) *types.Prediction {
	res := HeuristicScore(rec, rec.Animal, rec.Sire)
	return &types.Prediction{
		Probability:      res.Probability,
		BinaryPrediction: res.BinaryVerdict,
		Confidence:       res.Confidence,
		ModelName:        HeuristicModelName,
		ModelVersion:     HeuristicModelVersion,
		TopFeatures:      marshalFeatures(res.TopFeatures),
		Recommendations:  res.Recommendations,
	}
}

// mapUpstreamResponse converts the service's 0-100 consensus into the
// stored 0-1 fraction and flattens risk factors into the
// recommendations text.
func mapUpstreamResponse(resp *mlapi.PredictResponse) *types.Prediction {
	probability := resp.Probability / 100

	features := make([]ml.TopFeature, 0, len(resp.TopFeatures))
	for _, f := range resp.TopFeatures {
		features = append(features, ml.TopFeature{Feature: f.Feature, Importance: f.Importance})
	}

	confidence := resp.Confidence
	if confidence == "" {
		confidence = ml.ConfidenceTier(probability)
	}

	return &types.Prediction{
		Probability:      probability,
		BinaryPrediction: resp.BinaryVerdict,
		Confidence:       confidence,
		ModelName:        resp.ModelName,
		ModelVersion:     resp.ModelVersion,
		Accuracy:         resp.Metrics.Accuracy,
		Precision:        resp.Metrics.Precision,
		Recall:           resp.Metrics.Recall,
		F1Score:          resp.Metrics.F1Score,
		ROCAUC:           resp.Metrics.ROCAUC,
		TopFeatures:      marshalFeatures(features),
		Recommendations:  strings.Join(resp.RiskFactors, "\n"),
	}
}

func (s *predictionService) List(ctx context.Context, limit, offset int) ([]*types.Prediction, int64, error) {
	rows, total, err := s.predictions.List(ctx, nil, limit, offset)
	if err != nil {
		return nil, 0, apperr.FromDB(err)
	}
	return rows, total, nil
}

func (s *predictionService) Get(ctx context.Context, id uuid.UUID) (*types.Prediction, error) {
	pred, err := s.predictions.GetByID(ctx, nil, id)
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	if pred == nil {
		return nil, apperr.NotFound("prediccion no encontrada")
	}
	return pred, nil
}

// ValidateOutcome registers the real result against the prediction.
// Metrics are trusted as given; only correctness is derived here.
func (s *predictionService) ValidateOutcome(ctx context.Context, id uuid.UUID, observed bool) (*types.Prediction, error) {
	pred, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	correct := pred.BinaryPrediction == observed
	pred.ObservedOutcome = &observed
	pred.Correct = &correct
	pred.ValidatedAt = &now

	if err := s.predictions.Update(ctx, nil, pred); err != nil {
		return nil, apperr.FromDB(err)
	}
	s.activity.Record(ctx, audit.ActionConfirmResult, "Prediction", &pred.ID, "Prediccion validada con resultado real")
	return pred, nil
}

func (s *predictionService) Stats(ctx context.Context) (*PredictionStats, error) {
	raw, err := s.predictions.Stats(ctx, nil)
	if err != nil {
		return nil, apperr.FromDB(err)
	}

	out := &PredictionStats{
		Total:     raw.Total,
		Validated: raw.Validated,
		Correct:   raw.Correct,
	}
	if raw.Validated > 0 {
		out.HitRate = round2(float64(raw.Correct) / float64(raw.Validated) * 100)
	}
	if raw.AvgProbability != nil {
		out.MeanConfidence = round2(*raw.AvgProbability * 100)
	}
	return out, nil
}

func marshalFeatures(features []ml.TopFeature) datatypes.JSON {
	if len(features) == 0 {
		return nil
	}
	raw, err := json.Marshal(features)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
