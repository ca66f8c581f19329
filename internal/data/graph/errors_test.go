package graph

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/yungbote/graphadmin-backend/internal/domain"
	"github.com/yungbote/graphadmin-backend/internal/platform/logger"
)

func TestClassifyCommit(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want domain.ErrorCode
	}{
		{"syntax", &neo4j.Neo4jError{Code: "Neo.ClientError.Statement.SyntaxError", Msg: "bad"}, domain.CodeUploadRejected},
		{"constraint", &neo4j.Neo4jError{Code: "Neo.ClientError.Schema.ConstraintValidationFailed", Msg: "dup"}, domain.CodeUploadRejected},
		{"security", &neo4j.Neo4jError{Code: "Neo.ClientError.Security.Unauthorized", Msg: "no"}, domain.CodeUnavailable},
		{"transient", &neo4j.Neo4jError{Code: "Neo.TransientError.Transaction.DeadlockDetected", Msg: "retry"}, domain.CodeUnavailable},
		{"deadline", fmt.Errorf("run: %w", context.DeadlineExceeded), domain.CodeUnavailable},
		{"other", errors.New("boom"), domain.CodeUploadRejected},
	}
	for _, tc := range cases {
		got := domain.CodeOf(classifyCommit("op", tc.err))
		if got != tc.want {
			t.Fatalf("%s: want=%s got=%s", tc.name, tc.want, got)
		}
	}
}

func TestClassifyReadKeepsDomainErrors(t *testing.T) {
	nf := domain.NotFoundError("op", "missing")
	if got := classifyRead("op", nf); !domain.IsCode(got, domain.CodeNotFound) {
		t.Fatalf("classifyRead: want=not_found got=%v", got)
	}
	if got := classifyRead("op", errors.New("boom")); !domain.IsCode(got, domain.CodeInternal) {
		t.Fatalf("classifyRead: want=internal got=%v", got)
	}
	if classifyRead("op", nil) != nil {
		t.Fatalf("classifyRead(nil): want=nil")
	}
}

func TestNilClientIsUnavailable(t *testing.T) {
	log := logger.NewNop()
	c := NewCommitter(nil, log)
	if err := c.Commit(context.Background(), domain.EntityBatch{NodeType: "scene"}); !domain.IsCode(err, domain.CodeUnavailable) {
		t.Fatalf("Commit: want=unavailable got=%v", err)
	}
	m := NewMetadataStore(nil, log)
	if _, err := m.ListUniverses(context.Background()); !domain.IsCode(err, domain.CodeUnavailable) {
		t.Fatalf("ListUniverses: want=unavailable got=%v", err)
	}
}
