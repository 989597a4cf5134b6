package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Client is a typed VectorService client over a shared connection. All
// calls go out with the JSON content-subtype, including health checks.
type Client struct {
	conn *grpc.ClientConn
}

// NewClient opens a lazy client connection to the vector service.
// Extra dial options are appended after the defaults.
func NewClient(target string, opts ...grpc.DialOption) (*Client, error) {
	dialOpts := append([]grpc.DialOption{
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
	}, opts...)

	conn, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("dial vector service %q: %w", target, err)
	}
	return &Client{conn: conn}, nil
}

// Close tears down the underlying connection.
func (c *Client) Close() error {
	if err := c.conn.Close(); err != nil {
		return fmt.Errorf("close vector service conn: %w", err)
	}
	return nil
}

// CheckHealth reports the service status via the standard grpc.health.v1
// service registered alongside VectorService.
func (c *Client) CheckHealth(ctx context.Context) (healthpb.HealthCheckResponse_ServingStatus, error) {
	resp, err := healthpb.NewHealthClient(c.conn).Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}

func (c *Client) CreateCollection(ctx context.Context, req *CreateCollectionRequest) (*CollectionInfo, error) {
	out := new(CollectionInfo)
	if err := c.conn.Invoke(ctx, VectorService_CreateCollection_FullMethodName, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCollection(ctx context.Context, req *GetCollectionRequest) (*CollectionInfo, error) {
	out := new(CollectionInfo)
	if err := c.conn.Invoke(ctx, VectorService_GetCollection_FullMethodName, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListCollections(ctx context.Context, req *ListCollectionsRequest) (*ListCollectionsResponse, error) {
	out := new(ListCollectionsResponse)
	if err := c.conn.Invoke(ctx, VectorService_ListCollections_FullMethodName, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeleteCollection(ctx context.Context, req *DeleteCollectionRequest) (*DeleteCollectionResponse, error) {
	out := new(DeleteCollectionResponse)
	if err := c.conn.Invoke(ctx, VectorService_DeleteCollection_FullMethodName, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpsertDocument(ctx context.Context, req *UpsertDocumentRequest) (*UpsertDocumentResponse, error) {
	out := new(UpsertDocumentResponse)
	if err := c.conn.Invoke(ctx, VectorService_UpsertDocument_FullMethodName, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetDocument(ctx context.Context, req *GetDocumentRequest) (*DocumentInfo, error) {
	out := new(DocumentInfo)
	if err := c.conn.Invoke(ctx, VectorService_GetDocument_FullMethodName, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListDocuments(ctx context.Context, req *ListDocumentsRequest) (*ListDocumentsResponse, error) {
	out := new(ListDocumentsResponse)
	if err := c.conn.Invoke(ctx, VectorService_ListDocuments_FullMethodName, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) DeleteDocument(ctx context.Context, req *DeleteDocumentRequest) (*DeleteDocumentResponse, error) {
	out := new(DeleteDocumentResponse)
	if err := c.conn.Invoke(ctx, VectorService_DeleteDocument_FullMethodName, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) BatchUpsert(ctx context.Context, req *BatchUpsertRequest) (*BatchUpsertResponse, error) {
	out := new(BatchUpsertResponse)
	if err := c.conn.Invoke(ctx, VectorService_BatchUpsert_FullMethodName, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Search(ctx context.Context, req *SearchRequest) (*SearchResponse, error) {
	out := new(SearchResponse)
	if err := c.conn.Invoke(ctx, VectorService_Search_FullMethodName, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetUsage(ctx context.Context, req *GetUsageRequest) (*UsageReport, error) {
	out := new(UsageReport)
	if err := c.conn.Invoke(ctx, VectorService_GetUsage_FullMethodName, req, out); err != nil {
		return nil, err
	}
	return out, nil
}
