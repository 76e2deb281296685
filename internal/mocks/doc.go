// Package mocks provides function-field mocks shared by handler and
// middleware tests.
//
// Each mock has one Fn field per method. Unset fields fall back to the
// default values on the struct, so a test only wires the calls it cares
// about:
//
//	orders := &mocks.MockOrderService{
//	    GetOrderFn: func(ctx context.Context, caller *domain.User, id uuid.UUID) (*domain.OrderDetails, error) {
//	        return nil, service.ErrNotFound
//	    },
//	}
//
// Services tested in their own package use testify mocks instead.
package mocks
