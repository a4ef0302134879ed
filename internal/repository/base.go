// Package repository implements the data access layer over MongoDB.
package repository

import (
	"context"
	"errors"
	"regexp"

	"panoram/internal/models"
	"panoram/internal/observability"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel/trace"
)

// isDuplicateKeyError reports a unique index violation.
func isDuplicateKeyError(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

// wrapErr maps driver errors to AppErrors; AppErrors pass through.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return models.NewInternalError(err)
}

// substringRegex matches q anywhere, case-insensitively, with regex
// metacharacters taken literally.
func substringRegex(q string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
}

// track starts a span and a latency observation for one store call.
func track(ctx context.Context, op, collection string) (context.Context, func(err error)) {
	ctx, span := observability.TraceRepositoryMethod(ctx, op, collection)
	done := observability.TrackQuery(op, collection)
	return ctx, func(err error) {
		done()
		endSpan(span, err)
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		span.RecordError(err)
	}
	span.End()
}

// decodeAll drains a cursor into a non-nil slice.
func decodeAll[T any](ctx context.Context, cur *mongo.Cursor) ([]T, error) {
	out := make([]T, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func sortByRating() bson.D {
	return bson.D{{Key: "averageRating", Value: -1}, {Key: "_id", Value: 1}}
}
