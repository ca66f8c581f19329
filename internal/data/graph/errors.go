package graph

import (
	"context"
	"errors"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/yungbote/graphadmin-backend/internal/domain"
)

// classify maps driver errors onto the upload taxonomy: statements Neo4j refused are rejections,
// everything transport or capacity related is unavailable.
func classify(op string, err error, rejected func(string, error) error) error {
	if err == nil {
		return nil
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return domain.UnavailableError(op, err)
	}
	if neo4j.IsConnectivityError(err) {
		return domain.UnavailableError(op, err)
	}
	var nerr *neo4j.Neo4jError
	if errors.As(err, &nerr) {
		if strings.HasPrefix(nerr.Code, "Neo.ClientError.") && !strings.HasPrefix(nerr.Code, "Neo.ClientError.Security.") {
			return rejected(op, err)
		}
		return domain.UnavailableError(op, err)
	}
	var limit *neo4j.TransactionExecutionLimit
	if errors.As(err, &limit) {
		return domain.UnavailableError(op, err)
	}
	return rejected(op, err)
}

func classifyCommit(op string, err error) error {
	return classify(op, err, domain.UploadError)
}

func classifyRead(op string, err error) error {
	return classify(op, err, func(op string, err error) error {
		return domain.Wrap(domain.CodeInternal, op, err)
	})
}
