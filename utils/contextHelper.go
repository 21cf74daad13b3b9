package utils

import (
	"context"

	"bitbucket.org/mmdatafocus/procurement_backend/appctx"
)

var (
	ContextKeyCorrelationId = appctx.ContextKeyCorrelationId
	ContextKeyRequester     = appctx.ContextKeyRequester
)

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCorrelationId)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, ContextKeyCorrelationId, correlationId)
}

func GetRequesterFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyRequester)
}

func SetRequesterInContext(ctx context.Context, requester string) context.Context {
	return appctx.Set(ctx, ContextKeyRequester, requester)
}
