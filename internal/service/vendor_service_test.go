package service

import (
	"context"
	"testing"

	"Local_Market/internal/pkg"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestVendorRegister_Validation(t *testing.T) {
	svc := NewVendorService(nil, nil, nil, nil)
	community := uuid.NewString()

	for _, in := range []RegisterVendorInput{
		{CommunityID: "nope", ShopName: "Bee", Email: "b@e.e", Password: "secret1"},
		{CommunityID: community, ShopName: " ", Email: "b@e.e", Password: "secret1"},
		{CommunityID: community, ShopName: "Bee", Email: "", Password: "secret1"},
		{CommunityID: community, ShopName: "Bee", Email: "b@e.e", Password: "123"},
	} {
		_, err := svc.Register(context.Background(), in)
		assert.ErrorIs(t, err, pkg.ErrBadRequest, "%+v", in)
	}
}
