package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vreta/crm-api/internal/core/domain"
)

func countByDay(ctx context.Context, col *mongo.Collection, since time.Time) ([]domain.DayCount, error) {
	buckets, err := aggregate[dayBucket](ctx, col, dailyCountPipeline(since))
	if err != nil {
		return nil, err
	}
	out := make([]domain.DayCount, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, domain.DayCount{Day: b.Day, Count: b.Count})
	}
	return out, nil
}

func countByField(ctx context.Context, col *mongo.Collection, field string) ([]domain.CategoryCount, error) {
	buckets, err := aggregate[fieldBucket](ctx, col, fieldCountPipeline(field))
	if err != nil {
		return nil, err
	}
	out := make([]domain.CategoryCount, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, domain.CategoryCount{Category: b.Value, Count: b.Count})
	}
	return out, nil
}
