package order

import (
	domcustomer "github.com/Zhima-Mochi/minishop-orders/internal/domain/customer"
	domain "github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
	domproduct "github.com/Zhima-Mochi/minishop-orders/internal/domain/product"
)

// Collaborators consumed by AcceptOrderUseCase. Implementations live under infrastructure/.
type (
	CustomerLookup = domcustomer.Repository
	ProductCatalog = domproduct.Catalog
	OrderStore     = domain.Store
)
