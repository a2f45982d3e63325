//go:build grpc

// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package securerpc_test

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/luxfi/securerpc"
	"github.com/luxfi/securerpc/securerpctest"
)

// grpcBridge relays frames received over gRPC to the HTTP test server.
func grpcBridge(t *testing.T, srv *securerpctest.Server) string {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	relay := func(_ any, stream grpc.ServerStream) error {
		var frame []byte
		if err := stream.RecvMsg(&frame); err != nil {
			return err
		}
		md, _ := metadata.FromIncomingContext(stream.Context())
		req, err := http.NewRequestWithContext(stream.Context(), http.MethodPost, srv.URL+"/", bytes.NewReader(frame))
		if err != nil {
			return status.Error(codes.Internal, err.Error())
		}
		req.Header.Set("Content-Type", "application/octet-stream")
		if v := md.Get(securerpc.GRPCPublicKeyKey); len(v) > 0 {
			req.Header.Set(securerpc.PublicKeyHeader, v[0])
		}
		resp, err := srv.Client().Do(req)
		if err != nil {
			return status.Error(codes.Unavailable, err.Error())
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return status.Error(codes.Internal, err.Error())
		}
		if resp.StatusCode != http.StatusOK {
			return status.Errorf(codes.InvalidArgument, "%d: %s", resp.StatusCode, body)
		}
		if resp.Header.Get("Content-Type") == "application/octet-stream" {
			if err := stream.SetHeader(metadata.Pairs(securerpc.GRPCBodyKey, "sealed")); err != nil {
				return err
			}
		}
		return stream.SendMsg(body)
	}

	gs := grpc.NewServer(
		grpc.ForceServerCodec(securerpc.RawCodec{}),
		grpc.UnknownServiceHandler(relay),
	)
	go func() { _ = gs.Serve(lis) }()
	t.Cleanup(gs.Stop)
	return lis.Addr().String()
}

func TestGRPCTransportRegistered(t *testing.T) {
	assert.True(t, securerpc.HasTransport(securerpc.TransportGRPC))
	assert.Equal(t, []string{securerpc.TransportGRPC, securerpc.TransportHTTP}, securerpc.AvailableTransports())
}

func TestGRPCTransportCall(t *testing.T) {
	srv := securerpctest.NewServer(t)
	target := grpcBridge(t, srv)
	c := dial(t, srv.Addr(),
		securerpc.WithTransport(securerpc.TransportGRPC),
		securerpc.WithGRPCTarget(target),
	)

	got, err := c.Split(context.Background(), &securerpc.SplitParams{PrivateKey: "pk", Record: "r", Amount: 3})
	require.NoError(t, err)
	assert.Equal(t, securerpc.MethodSplit, got)

	calls := srv.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, c.Server().Fingerprint, srv.Fingerprint())
}

func TestGRPCTransportSealedReply(t *testing.T) {
	srv := securerpctest.NewServer(t, securerpctest.WithSealedReplies())
	target := grpcBridge(t, srv)
	c := dial(t, srv.Addr(),
		securerpc.WithTransport(securerpc.TransportGRPC),
		securerpc.WithGRPCTarget(target),
	)

	got, err := c.DeploymentCost(context.Background(), &securerpc.DeploymentCostParams{Program: "program a.aleo;"})
	require.NoError(t, err)
	assert.Equal(t, securerpc.MethodDeploymentCost, got)
}
