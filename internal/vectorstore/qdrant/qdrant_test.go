package qdrant

import (
	"context"
	"testing"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"faqbot/internal/domain"
)

type fakePoints struct {
	pb.PointsClient
	upserts []*pb.UpsertPoints
	search  *pb.SearchResponse
	apiKeys []string
}

func (f *fakePoints) Upsert(ctx context.Context, in *pb.UpsertPoints, _ ...grpc.CallOption) (*pb.PointsOperationResponse, error) {
	md, _ := metadata.FromOutgoingContext(ctx)
	f.apiKeys = append(f.apiKeys, md.Get("api-key")...)
	f.upserts = append(f.upserts, in)
	return &pb.PointsOperationResponse{}, nil
}

func (f *fakePoints) Search(_ context.Context, _ *pb.SearchPoints, _ ...grpc.CallOption) (*pb.SearchResponse, error) {
	return f.search, nil
}

type fakeCollections struct {
	pb.CollectionsClient
	existing []string
	created  []*pb.CreateCollection
	deleted  []string
}

func (f *fakeCollections) List(_ context.Context, _ *pb.ListCollectionsRequest, _ ...grpc.CallOption) (*pb.ListCollectionsResponse, error) {
	resp := &pb.ListCollectionsResponse{}
	for _, name := range f.existing {
		resp.Collections = append(resp.Collections, &pb.CollectionDescription{Name: name})
	}
	return resp, nil
}

func (f *fakeCollections) Create(_ context.Context, in *pb.CreateCollection, _ ...grpc.CallOption) (*pb.CollectionOperationResponse, error) {
	f.created = append(f.created, in)
	return &pb.CollectionOperationResponse{Result: true}, nil
}

func (f *fakeCollections) Delete(_ context.Context, in *pb.DeleteCollection, _ ...grpc.CallOption) (*pb.CollectionOperationResponse, error) {
	f.deleted = append(f.deleted, in.GetCollectionName())
	return &pb.CollectionOperationResponse{Result: true}, nil
}

func TestStorage_InitRecreatesCollection(t *testing.T) {
	cols := &fakeCollections{existing: []string{"other", "faq"}}
	s := newStorage(&fakePoints{}, cols, Config{Collection: "faq"})
	if err := s.Init(context.Background(), 4); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if len(cols.deleted) != 1 || cols.deleted[0] != "faq" {
		t.Errorf("expected stale faq collection dropped, got %v", cols.deleted)
	}
	if len(cols.created) != 1 {
		t.Fatalf("expected one create, got %d", len(cols.created))
	}
	params := cols.created[0].GetVectorsConfig().GetParams()
	if params.GetSize() != 4 || params.GetDistance() != pb.Distance_Cosine {
		t.Errorf("unexpected vector params: %+v", params)
	}
}

func TestStorage_UpsertNumbersPointsByCorpusIndex(t *testing.T) {
	points := &fakePoints{}
	s := newStorage(points, &fakeCollections{}, Config{Collection: "faq", APIKey: "secret"})
	ctx := context.Background()
	_ = s.Init(ctx, 2)

	first := []domain.CorpusEntry{{Question: "a", Answer: "A"}, {Question: "b", Answer: "B"}}
	if err := s.Upsert(ctx, first, [][]float64{{1, 0}, {0, 1}}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := s.Upsert(ctx, []domain.CorpusEntry{{Question: "c"}}, [][]float64{{1, 1}}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if got := points.upserts[1].GetPoints()[0].GetId().GetNum(); got != 2 {
		t.Errorf("expected third point id 2, got %d", got)
	}
	p := points.upserts[0].GetPoints()[1]
	if p.GetPayload()["answer"].GetStringValue() != "B" || p.GetPayload()["index"].GetIntegerValue() != 1 {
		t.Errorf("unexpected payload: %v", p.GetPayload())
	}
	if len(points.apiKeys) == 0 || points.apiKeys[0] != "secret" {
		t.Errorf("api key not sent: %v", points.apiKeys)
	}
}

func TestStorage_UpsertDimensionMismatch(t *testing.T) {
	s := newStorage(&fakePoints{}, &fakeCollections{}, Config{Collection: "faq"})
	_ = s.Init(context.Background(), 3)
	err := s.Upsert(context.Background(), []domain.CorpusEntry{{}}, [][]float64{{1}})
	if err == nil {
		t.Error("dimension mismatch should error")
	}
}

func TestStorage_SearchMapsPayload(t *testing.T) {
	points := &fakePoints{search: &pb.SearchResponse{Result: []*pb.ScoredPoint{{
		Id:    &pb.PointId{PointIdOptions: &pb.PointId_Num{Num: 7}},
		Score: 0.5,
		Payload: map[string]*pb.Value{
			"question": {Kind: &pb.Value_StringValue{StringValue: "What is diabetes?"}},
			"answer":   {Kind: &pb.Value_StringValue{StringValue: "A condition."}},
		},
	}}}}
	s := newStorage(points, &fakeCollections{}, Config{Collection: "faq"})
	res, err := s.Search(context.Background(), []float64{1, 0}, 3)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(res) != 1 || res[0].Index != 7 || res[0].Entry.Answer != "A condition." || res[0].Score != 0.5 {
		t.Errorf("unexpected results: %+v", res)
	}
}
