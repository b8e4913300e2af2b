//go:build protogen

package hours

import (
	"context"
	"time"

	"github.com/tahmid-rahman/openslot/internal/availability"
	"github.com/tahmid-rahman/openslot/libs/grpcx"
	businessv1 "github.com/tahmid-rahman/openslot/protos/gen/business/v1"
)

type grpcProvider struct {
	client     businessv1.BusinessServiceClient
	businessID string
}

// NewRemoteProvider dials the business service and serves that business's
// configured operating hours.
func NewRemoteProvider(addr, businessID string) (Provider, error) {
	if addr == "" {
		return nil, nil
	}
	conn, err := grpcx.Dial(context.Background(), addr, grpcx.DialOptions{Timeout: 3 * time.Second})
	if err != nil {
		return nil, err
	}
	return &grpcProvider{client: businessv1.NewBusinessServiceClient(conn), businessID: businessID}, nil
}

func (p *grpcProvider) BusinessHours(ctx context.Context) (availability.BusinessHours, error) {
	resp, err := p.client.GetOperatingHours(ctx, &businessv1.OperatingHoursRequest{
		BusinessId: p.businessID,
	})
	if err != nil {
		return availability.BusinessHours{}, err
	}
	return availability.NewBusinessHours(resp.GetTimezone(), resp.GetOpenLocal(), resp.GetCloseLocal())
}
