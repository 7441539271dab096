package person

import (
	"context"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hitoshi/contactsman/internal/model"
)

// DiagnosticKey は絞り込み結果を観測フックへ渡す際のキー。
const DiagnosticKey = "Persons"

// FilterObserver は絞り込みで一致した保存レコードを受け取る観測フック。
// ログやトレースなど特定の計測基盤にサービスを依存させないために用いる。
type FilterObserver interface {
	ObserveFiltered(ctx context.Context, key string, persons []*model.Person)
}

// FilterObserverFunc は関数をFilterObserverとして扱うためのアダプタ。
type FilterObserverFunc func(ctx context.Context, key string, persons []*model.Person)

// ObserveFiltered はf(ctx, key, persons)を呼び出す。
func (f FilterObserverFunc) ObserveFiltered(ctx context.Context, key string, persons []*model.Person) {
	f(ctx, key, persons)
}

// MultiObserver は複数のフックに順番に通知する。
type MultiObserver []FilterObserver

// ObserveFiltered は全てのフックに通知する。
func (m MultiObserver) ObserveFiltered(ctx context.Context, key string, persons []*model.Person) {
	for _, o := range m {
		o.ObserveFiltered(ctx, key, persons)
	}
}

// LogObserver は絞り込み結果をDEBUGレベルの構造化ログとして出力する。
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver はLogObserverを生成する。
func NewLogObserver(logger *slog.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

// ObserveFiltered は一致件数と人物IDをログに出力する。
func (o *LogObserver) ObserveFiltered(ctx context.Context, key string, persons []*model.Person) {
	if !o.logger.Enabled(ctx, slog.LevelDebug) {
		return
	}
	o.logger.LogAttrs(ctx, slog.LevelDebug, "filtered persons",
		slog.String("key", key),
		slog.Int("count", len(persons)),
		slog.Any("ids", personIDs(persons)),
	)
}

// TraceObserver は絞り込み結果を現在のスパンの属性として記録する。
type TraceObserver struct{}

// ObserveFiltered はスパンが記録中の場合のみ属性を設定する。
func (TraceObserver) ObserveFiltered(ctx context.Context, key string, persons []*model.Person) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	prefix := strings.ToLower(key)
	span.SetAttributes(
		attribute.Int(prefix+".count", len(persons)),
		attribute.StringSlice(prefix+".ids", personIDs(persons)),
	)
}

func personIDs(persons []*model.Person) []string {
	ids := make([]string, len(persons))
	for i, p := range persons {
		ids[i] = p.ID.String()
	}
	return ids
}

type noopObserver struct{}

func (noopObserver) ObserveFiltered(context.Context, string, []*model.Person) {}
