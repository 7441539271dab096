package person

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/contactsman/internal/model"
	"github.com/hitoshi/contactsman/internal/repository"
)

// ストレージ操作名（メトリクスのoperationラベル）
const (
	OperationListAll      = "list_all"
	OperationFindByID     = "find_by_id"
	OperationFindMatching = "find_matching"
)

// MetricsRecorder はサービスが記録するメトリクスのインターフェース。
type MetricsRecorder interface {
	RecordStorageLatency(operation string, d time.Duration)
	RecordFilterResult(field string, matched int)
	RecordExportRows(n int)
}

type noopMetrics struct{}

func (noopMetrics) RecordStorageLatency(string, time.Duration) {}
func (noopMetrics) RecordFilterResult(string, int)              {}
func (noopMetrics) RecordExportRows(int)                        {}

// Service は人物の取得・絞り込み・並び替え・エクスポートのサービス。
// リクエスト単位で利用され、内部状態を持たない。
type Service struct {
	personRepo repository.PersonRepository
	metrics    MetricsRecorder
	observer   FilterObserver
	logger     *slog.Logger
	now        func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
// metrics・observer・loggerがnilの場合は何もしない実装を使用する。
func NewService(
	personRepo repository.PersonRepository,
	metrics MetricsRecorder,
	observer FilterObserver,
	logger *slog.Logger,
) *Service {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if observer == nil {
		observer = noopObserver{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		personRepo: personRepo,
		metrics:    metrics,
		observer:   observer,
		logger:     logger,
		now:        time.Now,
	}
}

// GetAllPeople は全人物をViewとして返す。
func (s *Service) GetAllPeople(ctx context.Context) ([]View, error) {
	persons, err := timed(ctx, s, OperationListAll, func() ([]*model.Person, error) {
		return s.personRepo.ListAll(ctx)
	})
	if err != nil {
		return nil, err
	}
	return toViews(persons, s.now()), nil
}

// GetFiltered は指定フィールドに検索文字列を含む人物を返す。
// 未知または空のフィールドの場合は全件を返す。
// 一致した保存レコードはDiagnosticKeyで観測フックへ渡す。
func (s *Service) GetFiltered(ctx context.Context, searchString *string, searchBy string) ([]View, error) {
	search := normalizeSearchString(searchString)
	field := Field(searchBy)

	var (
		persons []*model.Person
		err     error
	)
	if pred, ok := predicateFor(field, search); ok {
		persons, err = timed(ctx, s, OperationFindMatching, func() ([]*model.Person, error) {
			return s.personRepo.FindMatching(ctx, pred)
		})
	} else {
		field = "none"
		persons, err = timed(ctx, s, OperationListAll, func() ([]*model.Person, error) {
			return s.personRepo.ListAll(ctx)
		})
	}
	if err != nil {
		return nil, err
	}

	s.observer.ObserveFiltered(ctx, DiagnosticKey, persons)
	s.metrics.RecordFilterResult(string(field), len(persons))

	return toViews(persons, s.now()), nil
}

// GetSorted はViewの一覧を並び替える。詳細はSortを参照。
func (s *Service) GetSorted(views []View, sortBy string, order SortOrder) []View {
	return Sort(views, sortBy, order)
}

// GetPersonByID はIDで人物を取得する。
// idがnilまたはuuid.Nilの場合はストレージに問い合わせずINVALID_ARGUMENTを返す。
// 該当する人物が存在しない場合は(nil, nil)を返す。
func (s *Service) GetPersonByID(ctx context.Context, id *uuid.UUID) (*View, error) {
	if id == nil || *id == uuid.Nil {
		return nil, model.NewInvalidArgumentError("人物ID")
	}

	p, err := timed(ctx, s, OperationFindByID, func() (*model.Person, error) {
		return s.personRepo.FindByID(ctx, *id)
	})
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}

	v := ToView(p, s.now())
	return &v, nil
}

// ExportSpreadsheet は全人物をxlsx形式で出力する。
// 返すReaderは先頭位置にある。
func (s *Service) ExportSpreadsheet(ctx context.Context) (*bytes.Reader, error) {
	views, err := s.GetAllPeople(ctx)
	if err != nil {
		return nil, err
	}

	r, err := writeSpreadsheet(views)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordExportRows(len(views))
	return r, nil
}

// timed はストレージ呼び出しの所要時間を計測し、メトリクスとDEBUGログに記録する。
func timed[T any](ctx context.Context, s *Service, operation string, fn func() (T, error)) (T, error) {
	start := time.Now()
	result, err := fn()
	elapsed := time.Since(start)

	s.metrics.RecordStorageLatency(operation, elapsed)
	s.logger.DebugContext(ctx, "storage query",
		slog.String("operation", operation),
		slog.Float64("duration_ms", float64(elapsed.Microseconds())/1000),
		slog.Bool("error", err != nil),
	)

	return result, err
}
