package qdrant

import (
	"context"
	"errors"
	"fmt"
	"time"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"faqbot/internal/domain"
)

// Storage keeps the corpus embedding table in a Qdrant collection over gRPC.
// Point IDs are corpus indices and the collection uses cosine distance.
type Storage struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
	apiKey      string
	timeout     time.Duration

	dimension int
	next      uint64
}

type Config struct {
	Addr       string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

// NewStorage dials Qdrant at cfg.Addr. The connection is established lazily.
func NewStorage(cfg Config) (*Storage, error) {
	conn, err := grpc.NewClient(cfg.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant: dial %s: %w", cfg.Addr, err)
	}
	s := newStorage(pb.NewPointsClient(conn), pb.NewCollectionsClient(conn), cfg)
	s.conn = conn
	return s, nil
}

func newStorage(points pb.PointsClient, collections pb.CollectionsClient, cfg Config) *Storage {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Storage{
		points:      points,
		collections: collections,
		collection:  cfg.Collection,
		apiKey:      cfg.APIKey,
		timeout:     timeout,
	}
}

// Close closes the underlying gRPC connection.
func (s *Storage) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *Storage) rpcContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.apiKey != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "api-key", s.apiKey)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Init recreates the collection so that it holds only the current corpus.
func (s *Storage) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.dimension = dimension
	s.next = 0
	if err := s.dropIfExists(ctx); err != nil {
		return err
	}
	return s.create(ctx)
}

func (s *Storage) dropIfExists(ctx context.Context) error {
	rctx, cancel := s.rpcContext(ctx)
	defer cancel()
	list, err := s.collections.List(rctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("qdrant: list collections: %w", err)
	}
	for _, c := range list.GetCollections() {
		if c.GetName() != s.collection {
			continue
		}
		if _, err := s.collections.Delete(rctx, &pb.DeleteCollection{CollectionName: s.collection}); err != nil {
			return fmt.Errorf("qdrant: delete collection %s: %w", s.collection, err)
		}
	}
	return nil
}

func (s *Storage) create(ctx context.Context) error {
	rctx, cancel := s.rpcContext(ctx)
	defer cancel()
	_, err := s.collections.Create(rctx, &pb.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(s.dimension),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("qdrant: create collection %s: %w", s.collection, err)
	}
	return nil
}

// Upsert appends entries after the rows already stored, numbering points by corpus index.
func (s *Storage) Upsert(ctx context.Context, entries []domain.CorpusEntry, vectors [][]float64) error {
	if len(entries) != len(vectors) {
		return errors.New("entries and vectors length mismatch")
	}
	if len(entries) == 0 {
		return nil
	}
	points := make([]*pb.PointStruct, len(entries))
	for i, e := range entries {
		if len(vectors[i]) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
		idx := s.next + uint64(i)
		points[i] = &pb.PointStruct{
			Id: &pb.PointId{PointIdOptions: &pb.PointId_Num{Num: idx}},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: toFloat32(vectors[i])}},
			},
			Payload: map[string]*pb.Value{
				"index":    {Kind: &pb.Value_IntegerValue{IntegerValue: int64(idx)}},
				"question": {Kind: &pb.Value_StringValue{StringValue: e.Question}},
				"answer":   {Kind: &pb.Value_StringValue{StringValue: e.Answer}},
			},
		}
	}
	rctx, cancel := s.rpcContext(ctx)
	defer cancel()
	wait := true
	if _, err := s.points.Upsert(rctx, &pb.UpsertPoints{
		CollectionName: s.collection,
		Wait:           &wait,
		Points:         points,
	}); err != nil {
		return fmt.Errorf("qdrant: upsert %d points: %w", len(points), err)
	}
	s.next += uint64(len(entries))
	return nil
}

// Search performs k-NN similarity search. Qdrant does not order equal scores,
// callers needing a deterministic winner must break ties themselves.
func (s *Storage) Search(ctx context.Context, vector []float64, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}
	rctx, cancel := s.rpcContext(ctx)
	defer cancel()
	resp, err := s.points.Search(rctx, &pb.SearchPoints{
		CollectionName: s.collection,
		Vector:         toFloat32(vector),
		Limit:          uint64(topK),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: search: %w", err)
	}
	results := make([]domain.SearchResult, len(resp.GetResult()))
	for i, p := range resp.GetResult() {
		payload := p.GetPayload()
		results[i] = domain.SearchResult{
			Index: int(p.GetId().GetNum()),
			Entry: domain.CorpusEntry{
				Question: payload["question"].GetStringValue(),
				Answer:   payload["answer"].GetStringValue(),
			},
			Score: float64(p.GetScore()),
		}
	}
	return results, nil
}

// Clear drops every point by recreating the collection.
func (s *Storage) Clear(ctx context.Context) error {
	if s.dimension == 0 {
		return nil
	}
	s.next = 0
	if err := s.dropIfExists(ctx); err != nil {
		return err
	}
	return s.create(ctx)
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}
