package services

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/yungbote/graphadmin-backend/internal/data/memstore"
	"github.com/yungbote/graphadmin-backend/internal/domain"
	"github.com/yungbote/graphadmin-backend/internal/modules/graphupload"
)

func newUploadFixture(t *testing.T, committer GraphCommitter) (SchemaService, MappingService, *uploadService) {
	t.Helper()
	log := testLogger(t)
	schemas := NewSchemaService(log, memstore.NewSchemaRepo(universeSchema()), memstore.NewChangeLog(0))
	mappings := NewMappingService(log, schemas)
	upload := NewUploadService(log, schemas, committer).(*uploadService)
	n := 0
	upload.newKey = func() string {
		n++
		return "gen-" + string(rune('0'+n))
	}
	return schemas, mappings, upload
}

func parse(t *testing.T, doc string) *domain.UploadedGraphData {
	t.Helper()
	data, err := graphupload.ParseGraphFile(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ParseGraphFile: %v", err)
	}
	return data
}

func TestSuggestThenApplyDropsExtra(t *testing.T) {
	committer := &fakeCommitter{}
	_, mappings, upload := newUploadFixture(t, committer)
	ctx := context.Background()
	data := parse(t, `{"nodes":[{"labels":["universe"],"properties":{"Name":"Foo","Extra":"bar"}}]}`)

	suggested, err := mappings.SuggestMappings(ctx, graphupload.SampleProperties(data), "universe")
	if err != nil {
		t.Fatalf("SuggestMappings: %v", err)
	}
	want := []domain.PropertyMapping{
		{SourceProperty: "Name", TargetProperty: "name", NodeType: "universe"},
		{SourceProperty: "Extra", TargetProperty: "Extra", NodeType: "universe"},
	}
	if !reflect.DeepEqual(suggested, want) {
		t.Fatalf("SuggestMappings: want=%+v got=%+v", want, suggested)
	}

	suggested[1].TargetProperty = ""
	report, err := upload.ApplyMappings(ctx, data, suggested)
	if err != nil {
		t.Fatalf("ApplyMappings: %v", err)
	}
	if committer.calls != 1 {
		t.Fatalf("commit calls: want=1 got=%d", committer.calls)
	}
	if report.NodeCount != 1 || report.NodeType != "universe" {
		t.Fatalf("report: got=%+v", report)
	}
	got := committer.last.Entities[0].Properties
	if !reflect.DeepEqual(got, map[string]any{"name": "Foo"}) {
		t.Fatalf("entity: want={name:Foo} got=%v", got)
	}
}

func TestSuggestUnknownNodeTypeIsEmpty(t *testing.T) {
	_, mappings, _ := newUploadFixture(t, &fakeCommitter{})
	got, err := mappings.SuggestMappings(context.Background(), []string{"a"}, "planet")
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("SuggestMappings: want=[] got=%v err=%v", got, err)
	}
}

func TestApplyMappingsGateSkipsCommitter(t *testing.T) {
	committer := &fakeCommitter{}
	_, _, upload := newUploadFixture(t, committer)
	ctx := context.Background()
	m := []domain.PropertyMapping{{SourceProperty: "Name", TargetProperty: "name", NodeType: "universe"}}

	cases := map[string]struct {
		data     *domain.UploadedGraphData
		mappings []domain.PropertyMapping
	}{
		"nil data":     {nil, m},
		"no nodes":     {&domain.UploadedGraphData{}, m},
		"no mappings":  {parse(t, `{"nodes":[{"properties":{"Name":"x"}}]}`), nil},
		"unknown type": {parse(t, `{"nodes":[{"properties":{"Name":"x"}}]}`), []domain.PropertyMapping{{SourceProperty: "Name", TargetProperty: "name", NodeType: "planet"}}},
	}
	for name, tc := range cases {
		_, err := upload.ApplyMappings(ctx, tc.data, tc.mappings)
		if !domain.IsCode(err, domain.CodeValidation) {
			t.Fatalf("%s: want=validation got=%v", name, err)
		}
	}
	if committer.calls != 0 {
		t.Fatalf("commit calls: want=0 got=%d", committer.calls)
	}
}

func TestApplyMappingsCommitterErrors(t *testing.T) {
	ctx := context.Background()
	data := parse(t, `{"nodes":[{"properties":{"Name":"x"}}]}`)
	m := []domain.PropertyMapping{{SourceProperty: "Name", TargetProperty: "name", NodeType: "universe"}}

	cases := []struct {
		name string
		err  error
		want domain.ErrorCode
	}{
		{"plain", errors.New("constraint violated"), domain.CodeUploadRejected},
		{"rejected", domain.UploadError("neo4j", errors.New("syntax")), domain.CodeUploadRejected},
		{"unavailable", domain.UnavailableError("neo4j", errors.New("dial")), domain.CodeUnavailable},
	}
	for _, tc := range cases {
		committer := &fakeCommitter{failErr: tc.err}
		_, _, upload := newUploadFixture(t, committer)
		_, err := upload.ApplyMappings(ctx, data, m)
		if !domain.IsCode(err, tc.want) {
			t.Fatalf("%s: want=%s got=%v", tc.name, tc.want, err)
		}
		if committer.calls != 1 {
			t.Fatalf("%s: commit calls: want=1 (no retry) got=%d", tc.name, committer.calls)
		}
	}
}

func TestPreviewMappingsDoesNotCommit(t *testing.T) {
	committer := &fakeCommitter{}
	_, _, upload := newUploadFixture(t, committer)
	data := parse(t, `{"nodes":[{"id":"u1","properties":{"Name":"A"}},{"properties":{"title":"B"}}]}`)
	m := []domain.PropertyMapping{
		{SourceProperty: "Name", TargetProperty: "name", NodeType: "universe"},
		{SourceProperty: "title", TargetProperty: "title", NodeType: "universe"},
	}
	preview, err := upload.PreviewMappings(context.Background(), data, m)
	if err != nil {
		t.Fatalf("PreviewMappings: %v", err)
	}
	if committer.calls != 0 {
		t.Fatalf("commit calls: want=0 got=%d", committer.calls)
	}
	if len(preview.Entities) != 2 || preview.Entities[0].Key != "u1" || preview.Entities[1].Key != "gen-1" {
		t.Fatalf("entities: got=%+v", preview.Entities)
	}
	missing := 0
	for _, w := range preview.Warnings {
		if w.Code == domain.WarningMissingRequired {
			missing++
		}
	}
	if missing != 1 {
		t.Fatalf("missing_required warnings: want=1 got=%d", missing)
	}
	if preview.Relationships == nil {
		t.Fatalf("relationships: want non-nil slice")
	}
}

func TestApplyMappingsWithoutCommitter(t *testing.T) {
	_, _, upload := newUploadFixture(t, nil)
	upload.committer = nil
	data := parse(t, `{"nodes":[{"properties":{"Name":"x"}}]}`)
	m := []domain.PropertyMapping{{SourceProperty: "Name", TargetProperty: "name", NodeType: "universe"}}
	if _, err := upload.ApplyMappings(context.Background(), data, m); !domain.IsCode(err, domain.CodeUnavailable) {
		t.Fatalf("ApplyMappings: want=unavailable got=%v", err)
	}
}
