// item360-backend/internal/repository/postgres/scope.go
package postgres

import (
	"fmt"

	"github.com/erpmco/item360-backend/internal/domain"
	"github.com/lib/pq"
)

// warehouseCondition builds the warehouse scoping clause for an aliased
// table. Priority: branch warehouses, then the explicit warehouse, else no
// clause. args is extended in place; argPos is the next placeholder index.
func warehouseCondition(alias string, scope domain.WarehouseScope, args []interface{}, argPos int) (string, []interface{}, int) {
	if len(scope.Warehouses) > 0 {
		clause := fmt.Sprintf(" AND %s.warehouse = ANY($%d)", alias, argPos)
		return clause, append(args, pq.Array(scope.Warehouses)), argPos + 1
	}
	if scope.Warehouse != "" {
		clause := fmt.Sprintf(" AND %s.warehouse = $%d", alias, argPos)
		return clause, append(args, scope.Warehouse), argPos + 1
	}
	return "", args, argPos
}
