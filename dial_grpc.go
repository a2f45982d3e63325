//go:build grpc

// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package securerpc

import (
	"context"
	"fmt"
	"net/url"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

// GRPCMethod is the full method name frames are sent to.
const GRPCMethod = "/securerpc.SealedChannel/Call"

const (
	// GRPCPublicKeyKey is the request metadata key mirroring the Public-Key header.
	GRPCPublicKeyKey = "public-key"
	// GRPCBodyKey is response header metadata; "sealed" marks an encrypted reply.
	GRPCBodyKey = "securerpc-body"
)

func init() {
	// Register gRPC transport when build tag is enabled
	registerTransport(TransportGRPC, dialGRPC)
}

// RawCodec moves frames through gRPC without protobuf framing. Servers
// accepting sealed frames install it with grpc.ForceServerCodec.
type RawCodec struct{}

func (RawCodec) Marshal(v any) ([]byte, error) {
	switch b := v.(type) {
	case []byte:
		return b, nil
	case *[]byte:
		return *b, nil
	}
	return nil, fmt.Errorf("raw codec: cannot marshal %T", v)
}

func (RawCodec) Unmarshal(data []byte, v any) error {
	b, ok := v.(*[]byte)
	if !ok {
		return fmt.Errorf("raw codec: cannot unmarshal into %T", v)
	}
	*b = append((*b)[:0], data...)
	return nil
}

func (RawCodec) Name() string { return "securerpc-raw" }

func dialGRPC(ctx context.Context, base *url.URL, o *dialOptions) (Transport, error) {
	target := o.grpcTarget
	if target == "" {
		target = base.Host
	}
	conn, err := grpc.NewClient(target,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(RawCodec{})),
	)
	if err != nil {
		return nil, fmt.Errorf("grpc dial: %w", err)
	}
	return &grpcTransport{conn: conn}, nil
}

type grpcTransport struct {
	conn *grpc.ClientConn
}

func (t *grpcTransport) Send(ctx context.Context, req *SealedRequest) (*Reply, error) {
	ctx = metadata.AppendToOutgoingContext(ctx, GRPCPublicKeyKey, req.PublicKey)
	var header metadata.MD
	var resp []byte
	if err := t.conn.Invoke(ctx, GRPCMethod, req.Body, &resp, grpc.Header(&header)); err != nil {
		return nil, err
	}
	reply := &Reply{Body: resp, ContentType: mimeJSON}
	if v := header.Get(GRPCBodyKey); len(v) > 0 && v[0] == "sealed" {
		reply.ContentType = mimeSealed
	}
	return reply, nil
}

func (t *grpcTransport) Close() error {
	return t.conn.Close()
}
