package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveOrderStatus(t *testing.T) {
	cases := []struct {
		name     string
		statuses []string
		want     string
	}{
		{"no items", nil, OrderPending},
		{"all pending", []string{OrderItemPending, OrderItemPending}, OrderPending},
		{"one assigned", []string{OrderItemPending, OrderItemAssignedToRun}, OrderAssignedToRun},
		{"all picked", []string{OrderItemPicked, OrderItemPicked}, OrderPicked},
		{"picked mixed with pending", []string{OrderItemPicked, OrderItemPending}, OrderAssignedToRun},
		{"all shipped", []string{OrderItemShipped, OrderItemShipped}, OrderShipped},
		{"partially shipped", []string{OrderItemShipped, OrderItemPicked}, OrderPartiallyShipped},
		{"shipped with pending", []string{OrderItemShipped, OrderItemPending}, OrderPartiallyShipped},
		{"all cancelled", []string{OrderItemCancelled, OrderItemCancelled}, OrderCancelled},
		{"cancelled excluded from tally", []string{OrderItemCancelled, OrderItemShipped}, OrderShipped},
		{"cancelled with pending", []string{OrderItemCancelled, OrderItemPending}, OrderPending},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items := make([]OrderItem, 0, len(tc.statuses))
			for _, s := range tc.statuses {
				items = append(items, OrderItem{Status: s})
			}
			assert.Equal(t, tc.want, DeriveOrderStatus(items))
		})
	}
}
