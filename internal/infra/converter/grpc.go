package converter

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/core/domain"
)

const convertMethod = "/converter.v1.ConverterService/Convert"

// GRPCClient calls the converter service over gRPC using generic
// structpb messages, so no generated stubs are required.
type GRPCClient struct {
	endpoint string
	conn     *grpc.ClientConn
}

// NewGRPCClient dials the converter service.
func NewGRPCClient(ctx context.Context, cfg Config) (*GRPCClient, error) {
	target := cfg.Endpoint
	var opts []grpc.DialOption

	if strings.HasPrefix(target, "https://") || strings.HasSuffix(target, ":443") {
		creds := credentials.NewTLS(&tls.Config{})
		opts = append(opts, grpc.WithTransportCredentials(creds))
		target = strings.TrimPrefix(target, "https://")
	} else {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
		target = strings.TrimPrefix(target, "http://")
	}

	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to dial converter endpoint %s: %w", target, err)
	}

	return &GRPCClient{endpoint: cfg.Endpoint, conn: conn}, nil
}

// Convert invokes the generic convert method and decodes the response
// struct into a ConversionResult.
func (c *GRPCClient) Convert(ctx context.Context, source string, kind domain.ObjectKind) (*domain.ConversionResult, error) {
	in, err := structpb.NewStruct(map[string]any{
		"source": source,
		"kind":   string(kind),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrConversion, err)
	}

	out := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, convertMethod, in, out); err != nil {
		// Structured rejections still carry usable diagnostics.
		if diags := badRequestDiagnostics(err); diags != nil {
			return &domain.ConversionResult{
				Tool:        domain.ToolPrimary,
				ErrorCount:  len(diags),
				Diagnostics: diags,
			}, nil
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrConversion, err)
	}

	result := &domain.ConversionResult{Tool: domain.ToolPrimary}
	fields := out.GetFields()

	result.Text = fields["text"].GetStringValue()
	for _, v := range fields["errors"].GetListValue().GetValues() {
		result.Diagnostics = append(result.Diagnostics, structDiagnostic(v))
		result.ErrorCount++
	}
	for _, v := range fields["warnings"].GetListValue().GetValues() {
		result.Diagnostics = append(result.Diagnostics, structDiagnostic(v))
		result.WarningCount++
	}
	return result, nil
}

// Close closes the connection.
func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

// badRequestDiagnostics extracts BadRequest field violations from a gRPC
// status error, or nil when none are attached.
func badRequestDiagnostics(err error) []domain.Diagnostic {
	st, ok := status.FromError(err)
	if !ok {
		return nil
	}
	var diags []domain.Diagnostic
	for _, detail := range st.Details() {
		if br, ok := detail.(*errdetails.BadRequest); ok {
			for _, v := range br.GetFieldViolations() {
				diags = append(diags, domain.Diagnostic{
					Code:    v.GetField(),
					Message: v.GetDescription(),
				})
			}
		}
	}
	return diags
}

func structDiagnostic(v *structpb.Value) domain.Diagnostic {
	fields := v.GetStructValue().GetFields()
	if fields == nil {
		return domain.Diagnostic{Message: v.GetStringValue()}
	}
	return domain.Diagnostic{
		Code:    fields["code"].GetStringValue(),
		Message: fields["message"].GetStringValue(),
		Line:    int(fields["line"].GetNumberValue()),
	}
}
