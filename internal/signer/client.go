package signer

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Client is the Host Agent's handle on a Signer process over its UDS.
// Every method is a direct grpc.ClientConn.Invoke against serviceDesc's
// method names — the hand-written mirror of a generated client stub.
type Client struct {
	conn *grpc.ClientConn
}

// Dial connects to the Signer listening on socketPath.
func Dial(ctx context.Context, socketPath string) (*Client, error) {
	conn, err := grpc.NewClient(
		"unix://"+socketPath,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("signer: dial %s: %w", socketPath, err)
	}
	return &Client{conn: conn}, nil
}

// Close tears down the underlying connection.
func (c *Client) Close() error { return c.conn.Close() }

func invoke[Req, Resp any](ctx context.Context, c *Client, method string, req *Req) (*Resp, error) {
	resp := new(Resp)
	if err := c.conn.Invoke(ctx, "/"+ServiceName+"/"+method, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) InitTransaction(ctx context.Context, req *InitTransactionRequest) (*InitTransactionResponse, error) {
	return invoke[InitTransactionRequest, InitTransactionResponse](ctx, c, "InitTransaction", req)
}

func (c *Client) PrecomputeSubaddr(ctx context.Context, req *PrecomputeSubaddrRequest) (*PrecomputeSubaddrResponse, error) {
	return invoke[PrecomputeSubaddrRequest, PrecomputeSubaddrResponse](ctx, c, "PrecomputeSubaddr", req)
}

func (c *Client) SetInputCount(ctx context.Context, req *SetInputCountRequest) (*SetInputCountResponse, error) {
	return invoke[SetInputCountRequest, SetInputCountResponse](ctx, c, "SetInputCount", req)
}

func (c *Client) SetInput(ctx context.Context, req *SetInputRequest) (*SetInputResponse, error) {
	return invoke[SetInputRequest, SetInputResponse](ctx, c, "SetInput", req)
}

func (c *Client) InputsDone(ctx context.Context, req *InputsDoneRequest) (*InputsDoneResponse, error) {
	return invoke[InputsDoneRequest, InputsDoneResponse](ctx, c, "InputsDone", req)
}

func (c *Client) InputsPermutation(ctx context.Context, req *InputsPermutationRequest) (*InputsPermutationResponse, error) {
	return invoke[InputsPermutationRequest, InputsPermutationResponse](ctx, c, "InputsPermutation", req)
}

func (c *Client) InputVini(ctx context.Context, req *InputViniRequest) (*InputViniResponse, error) {
	return invoke[InputViniRequest, InputViniResponse](ctx, c, "InputVini", req)
}

func (c *Client) InputViniDone(ctx context.Context, req *InputViniDoneRequest) (*InputViniDoneResponse, error) {
	return invoke[InputViniDoneRequest, InputViniDoneResponse](ctx, c, "InputViniDone", req)
}

func (c *Client) SetOutput(ctx context.Context, req *SetOutputRequest) (*SetOutputResponse, error) {
	return invoke[SetOutputRequest, SetOutputResponse](ctx, c, "SetOutput", req)
}

func (c *Client) AllOut1Set(ctx context.Context, req *AllOut1SetRequest) (*AllOut1SetResponse, error) {
	return invoke[AllOut1SetRequest, AllOut1SetResponse](ctx, c, "AllOut1Set", req)
}

func (c *Client) MlsagPseudoOut(ctx context.Context, req *MlsagPseudoOutRequest) (*MlsagPseudoOutResponse, error) {
	return invoke[MlsagPseudoOutRequest, MlsagPseudoOutResponse](ctx, c, "MlsagPseudoOut", req)
}

func (c *Client) MlsagRangeproof(ctx context.Context, req *MlsagRangeproofRequest) (*MlsagRangeproofResponse, error) {
	return invoke[MlsagRangeproofRequest, MlsagRangeproofResponse](ctx, c, "MlsagRangeproof", req)
}

func (c *Client) SignInput(ctx context.Context, req *SignInputRequest) (*SignInputResponse, error) {
	return invoke[SignInputRequest, SignInputResponse](ctx, c, "SignInput", req)
}

func (c *Client) EndSession(ctx context.Context, req *EndSessionRequest) (*EndSessionResponse, error) {
	return invoke[EndSessionRequest, EndSessionResponse](ctx, c, "EndSession", req)
}

func (c *Client) GetSessionState(ctx context.Context, req *GetSessionStateRequest) (*GetSessionStateResponse, error) {
	return invoke[GetSessionStateRequest, GetSessionStateResponse](ctx, c, "GetSessionState", req)
}

func (c *Client) GetAssembly(ctx context.Context, req *GetAssemblyRequest) (*GetAssemblyResponse, error) {
	return invoke[GetAssemblyRequest, GetAssemblyResponse](ctx, c, "GetAssembly", req)
}
