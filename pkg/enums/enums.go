package enums

// Role identifies the access level carried in session claims.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// ProductSort enumerates the supported catalog sort keys.
type ProductSort string

const (
	ProductSortDefault   ProductSort = ""
	ProductSortPriceAsc  ProductSort = "price_asc"
	ProductSortPriceDesc ProductSort = "price_desc"
	ProductSortNewest    ProductSort = "newest"
)

// ParseProductSort maps unknown values to the default ordering instead of failing.
func ParseProductSort(value string) ProductSort {
	switch ProductSort(value) {
	case ProductSortPriceAsc, ProductSortPriceDesc, ProductSortNewest:
		return ProductSort(value)
	}
	return ProductSortDefault
}
