package storage

import (
	"context"
	"fmt"

	"github.com/niksmo/storefront/internal/adapter/storage/sqlq"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var _ port.CartItemsStorage = (*CartItemsRepository)(nil)

const cartItemsTable = "cart_items"

type CartItemsRepository struct {
	sqldb sqldb
}

func NewCartItemsRepository(sqldb sqldb) CartItemsRepository {
	return CartItemsRepository{sqldb}
}

// ListCartItems returns cart items, most recently added first. An empty
// userUID lists the items of every user.
func (r CartItemsRepository) ListCartItems(
	ctx context.Context, userUID string,
) ([]domain.CartItem, error) {
	const op = "CartItemsRepository.ListCartItems"

	var ps []sqlq.Predicate
	if userUID != "" {
		ps = append(ps, sqlq.Eq("user_uid", userUID))
	}
	stmt := sqlq.Assemble(
		"SELECT "+cartItemColumns+" FROM "+cartItemsTable,
		ps, "added_at DESC", sqlq.Page{},
	)

	vs, err := queryAll(ctx, r.sqldb, stmt, scanCartItem)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return vs, nil
}

func (r CartItemsRepository) ReadCartItem(
	ctx context.Context, id int64,
) (domain.CartItem, error) {
	const op = "CartItemsRepository.ReadCartItem"

	query := "SELECT " + cartItemColumns + " FROM " + cartItemsTable +
		" WHERE id = $1"

	v, err := scanCartItem(r.sqldb.QueryRowContext(ctx, query, id))
	if err != nil {
		return domain.CartItem{}, notFound(op, err)
	}
	return v, nil
}

// UpdateCartItem sets the present fields of patch and returns the updated
// row. The patch must not be empty.
func (r CartItemsRepository) UpdateCartItem(
	ctx context.Context, id int64, patch domain.CartItemPatch,
) (domain.CartItem, error) {
	const op = "CartItemsRepository.UpdateCartItem"

	var as []sqlq.Assignment
	if patch.Quantity != nil {
		as = append(as, sqlq.Assignment{Column: "quantity", Value: *patch.Quantity})
	}
	if patch.Price != nil {
		as = append(as, sqlq.Assignment{Column: "price", Value: *patch.Price})
	}
	if len(as) == 0 {
		return domain.CartItem{}, fmt.Errorf(
			"%s: %w", op, domain.NewValidationError("Nothing to update"),
		)
	}

	stmt := sqlq.UpdateByID(cartItemsTable, as, id, cartItemColumns)

	row := r.sqldb.QueryRowContext(ctx, stmt.SQL, stmt.Args...)
	v, err := scanCartItem(row)
	if err != nil {
		return domain.CartItem{}, notFound(op, err)
	}
	return v, nil
}

// DeleteCartItem removes the item and returns its last state.
func (r CartItemsRepository) DeleteCartItem(
	ctx context.Context, id int64,
) (domain.CartItem, error) {
	const op = "CartItemsRepository.DeleteCartItem"

	query := "DELETE FROM " + cartItemsTable + " WHERE id = $1 RETURNING " +
		cartItemColumns

	v, err := scanCartItem(r.sqldb.QueryRowContext(ctx, query, id))
	if err != nil {
		return domain.CartItem{}, notFound(op, err)
	}
	return v, nil
}
