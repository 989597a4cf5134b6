package grpc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "intramind.vector.v1.VectorService"

// Full method names for interceptors and clients.
const (
	VectorService_CreateCollection_FullMethodName = "/intramind.vector.v1.VectorService/CreateCollection"
	VectorService_GetCollection_FullMethodName    = "/intramind.vector.v1.VectorService/GetCollection"
	VectorService_ListCollections_FullMethodName  = "/intramind.vector.v1.VectorService/ListCollections"
	VectorService_DeleteCollection_FullMethodName = "/intramind.vector.v1.VectorService/DeleteCollection"
	VectorService_UpsertDocument_FullMethodName   = "/intramind.vector.v1.VectorService/UpsertDocument"
	VectorService_GetDocument_FullMethodName      = "/intramind.vector.v1.VectorService/GetDocument"
	VectorService_ListDocuments_FullMethodName    = "/intramind.vector.v1.VectorService/ListDocuments"
	VectorService_DeleteDocument_FullMethodName   = "/intramind.vector.v1.VectorService/DeleteDocument"
	VectorService_BatchUpsert_FullMethodName      = "/intramind.vector.v1.VectorService/BatchUpsert"
	VectorService_Search_FullMethodName           = "/intramind.vector.v1.VectorService/Search"
	VectorService_GetUsage_FullMethodName         = "/intramind.vector.v1.VectorService/GetUsage"
)

// VectorServiceServer is the server contract for the vector service.
type VectorServiceServer interface {
	CreateCollection(ctx context.Context, req *CreateCollectionRequest) (*CollectionInfo, error)
	GetCollection(ctx context.Context, req *GetCollectionRequest) (*CollectionInfo, error)
	ListCollections(ctx context.Context, req *ListCollectionsRequest) (*ListCollectionsResponse, error)
	DeleteCollection(ctx context.Context, req *DeleteCollectionRequest) (*DeleteCollectionResponse, error)
	UpsertDocument(ctx context.Context, req *UpsertDocumentRequest) (*UpsertDocumentResponse, error)
	GetDocument(ctx context.Context, req *GetDocumentRequest) (*DocumentInfo, error)
	ListDocuments(ctx context.Context, req *ListDocumentsRequest) (*ListDocumentsResponse, error)
	DeleteDocument(ctx context.Context, req *DeleteDocumentRequest) (*DeleteDocumentResponse, error)
	BatchUpsert(ctx context.Context, req *BatchUpsertRequest) (*BatchUpsertResponse, error)
	Search(ctx context.Context, req *SearchRequest) (*SearchResponse, error)
	GetUsage(ctx context.Context, req *GetUsageRequest) (*UsageReport, error)
}

// RegisterVectorServiceServer registers the service implementation on a
// gRPC server.
func RegisterVectorServiceServer(s grpc.ServiceRegistrar, srv VectorServiceServer) {
	s.RegisterService(&VectorService_ServiceDesc, srv)
}

// The method handlers below follow the dispatch shape protoc-gen-go-grpc
// emits, so interceptor chains and gRPC tooling see a regular unary
// service. Payloads are decoded by the JSON codec (codec.go), not by
// protobuf descriptors.

func _VectorService_CreateCollection_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CreateCollectionRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(VectorServiceServer).CreateCollection(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: VectorService_CreateCollection_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(VectorServiceServer).CreateCollection(ctx, req.(*CreateCollectionRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _VectorService_GetCollection_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetCollectionRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(VectorServiceServer).GetCollection(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: VectorService_GetCollection_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(VectorServiceServer).GetCollection(ctx, req.(*GetCollectionRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _VectorService_ListCollections_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListCollectionsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(VectorServiceServer).ListCollections(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: VectorService_ListCollections_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(VectorServiceServer).ListCollections(ctx, req.(*ListCollectionsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _VectorService_DeleteCollection_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(DeleteCollectionRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(VectorServiceServer).DeleteCollection(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: VectorService_DeleteCollection_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(VectorServiceServer).DeleteCollection(ctx, req.(*DeleteCollectionRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _VectorService_UpsertDocument_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(UpsertDocumentRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(VectorServiceServer).UpsertDocument(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: VectorService_UpsertDocument_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(VectorServiceServer).UpsertDocument(ctx, req.(*UpsertDocumentRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _VectorService_GetDocument_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetDocumentRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(VectorServiceServer).GetDocument(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: VectorService_GetDocument_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(VectorServiceServer).GetDocument(ctx, req.(*GetDocumentRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _VectorService_ListDocuments_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListDocumentsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(VectorServiceServer).ListDocuments(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: VectorService_ListDocuments_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(VectorServiceServer).ListDocuments(ctx, req.(*ListDocumentsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _VectorService_DeleteDocument_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(DeleteDocumentRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(VectorServiceServer).DeleteDocument(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: VectorService_DeleteDocument_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(VectorServiceServer).DeleteDocument(ctx, req.(*DeleteDocumentRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _VectorService_BatchUpsert_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(BatchUpsertRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(VectorServiceServer).BatchUpsert(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: VectorService_BatchUpsert_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(VectorServiceServer).BatchUpsert(ctx, req.(*BatchUpsertRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _VectorService_Search_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(SearchRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(VectorServiceServer).Search(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: VectorService_Search_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(VectorServiceServer).Search(ctx, req.(*SearchRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _VectorService_GetUsage_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetUsageRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(VectorServiceServer).GetUsage(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: VectorService_GetUsage_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(VectorServiceServer).GetUsage(ctx, req.(*GetUsageRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// VectorService_ServiceDesc is the grpc.ServiceDesc for VectorService.
var VectorService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*VectorServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateCollection", Handler: _VectorService_CreateCollection_Handler},
		{MethodName: "GetCollection", Handler: _VectorService_GetCollection_Handler},
		{MethodName: "ListCollections", Handler: _VectorService_ListCollections_Handler},
		{MethodName: "DeleteCollection", Handler: _VectorService_DeleteCollection_Handler},
		{MethodName: "UpsertDocument", Handler: _VectorService_UpsertDocument_Handler},
		{MethodName: "GetDocument", Handler: _VectorService_GetDocument_Handler},
		{MethodName: "ListDocuments", Handler: _VectorService_ListDocuments_Handler},
		{MethodName: "DeleteDocument", Handler: _VectorService_DeleteDocument_Handler},
		{MethodName: "BatchUpsert", Handler: _VectorService_BatchUpsert_Handler},
		{MethodName: "Search", Handler: _VectorService_Search_Handler},
		{MethodName: "GetUsage", Handler: _VectorService_GetUsage_Handler},
	},
	Streams: []grpc.StreamDesc{},
}
