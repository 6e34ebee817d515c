package vectorstore

import (
	"context"
	"encoding/binary"
	"fmt"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/google/uuid"

	"github.com/yanqian/ragchat/internal/domain/rag"
)

// QdrantVectorStore is a rag.VectorStore backed by a Qdrant collection.
//
// Point IDs are the first 8 bytes of the chunk UUID, truncated into a
// Qdrant numeric point ID rather than carried as a native UUID point
// ID. Two chunk UUIDs that collide on their first 8 bytes will
// overwrite each other's point; this is a known, accepted limitation
// rather than an oversight.
type QdrantVectorStore struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
}

// NewQdrantVectorStore dials addr and returns a QdrantVectorStore
// bound to collection.
func NewQdrantVectorStore(addr, collection string) (*QdrantVectorStore, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("vectorstore: dial qdrant %s: %w", addr, err)
	}
	return &QdrantVectorStore{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  collection,
	}, nil
}

// Close closes the underlying gRPC connection.
func (v *QdrantVectorStore) Close() error {
	return v.conn.Close()
}

// EnsureCollection creates the collection with cosine distance if it
// doesn't already exist.
func (v *QdrantVectorStore) EnsureCollection(ctx context.Context, dims int) error {
	list, err := v.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("vectorstore: list collections: %w", err)
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == v.collection {
			return nil
		}
	}

	_, err = v.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: v.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(dims),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("vectorstore: create collection %s: %w", v.collection, err)
	}
	return nil
}

// Upsert implements rag.VectorStore.
func (v *QdrantVectorStore) Upsert(ctx context.Context, embeddings []rag.Embedding, chunks []rag.Chunk) error {
	if len(embeddings) == 0 {
		return nil
	}
	byChunk := make(map[uuid.UUID]rag.Chunk, len(chunks))
	for _, c := range chunks {
		byChunk[c.ID] = c
	}

	points := make([]*pb.PointStruct, 0, len(embeddings))
	for _, e := range embeddings {
		chunk, ok := byChunk[e.ChunkID]
		if !ok {
			continue
		}
		payload := map[string]*pb.Value{
			"chunk_id":    {Kind: &pb.Value_StringValue{StringValue: e.ChunkID.String()}},
			"document_id": {Kind: &pb.Value_StringValue{StringValue: e.DocumentID.String()}},
			"content":     {Kind: &pb.Value_StringValue{StringValue: chunk.Content}},
			"index":       {Kind: &pb.Value_IntegerValue{IntegerValue: int64(chunk.Index)}},
		}
		points = append(points, &pb.PointStruct{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Num{Num: truncatePointID(e.ChunkID)},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: e.Vector},
				},
			},
			Payload: payload,
		})
	}

	wait := true
	_, err := v.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: v.collection,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("vectorstore: upsert %d points: %w", len(points), err)
	}
	return nil
}

// Search implements rag.VectorStore via Qdrant k-NN search.
func (v *QdrantVectorStore) Search(ctx context.Context, query []float32, topK int) ([]rag.SearchResult, error) {
	req := &pb.SearchPoints{
		CollectionName: v.collection,
		Vector:         query,
		Limit:          uint64(topK),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	}
	resp, err := v.points.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("vectorstore: search: %w", err)
	}

	results := make([]rag.SearchResult, 0, len(resp.GetResult()))
	for _, r := range resp.GetResult() {
		payload := r.GetPayload()
		chunkID, _ := uuid.Parse(payload["chunk_id"].GetStringValue())
		documentID, _ := uuid.Parse(payload["document_id"].GetStringValue())
		results = append(results, rag.SearchResult{
			ChunkID:    chunkID,
			DocumentID: documentID,
			Content:    payload["content"].GetStringValue(),
			Source:     "qdrant",
			Score:      float64(r.GetScore()),
		})
	}
	return results, nil
}

// DeleteByDocument implements rag.VectorStore by filtering on the
// document_id payload field.
func (v *QdrantVectorStore) DeleteByDocument(ctx context.Context, documentID uuid.UUID) error {
	wait := true
	_, err := v.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: v.collection,
		Wait:           &wait,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Filter{
				Filter: &pb.Filter{
					Must: []*pb.Condition{fieldMatch("document_id", documentID.String())},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("vectorstore: delete by document %s: %w", documentID, err)
	}
	return nil
}

var _ rag.VectorStore = (*QdrantVectorStore)(nil)

// truncatePointID maps a chunk UUID onto a 64-bit Qdrant numeric point
// ID by taking the first 8 bytes of the UUID. This is lossy by
// design: see the QdrantVectorStore doc comment.
func truncatePointID(id uuid.UUID) uint64 {
	return binary.BigEndian.Uint64(id[:8])
}

func fieldMatch(key, value string) *pb.Condition {
	return &pb.Condition{
		ConditionOneOf: &pb.Condition_Field{
			Field: &pb.FieldCondition{
				Key: key,
				Match: &pb.Match{
					MatchValue: &pb.Match_Keyword{Keyword: value},
				},
			},
		},
	}
}
