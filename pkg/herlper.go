package pkg

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Paginate clamps page and limit and returns the row offset they address.
func Paginate(page, limit, fallback int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = fallback
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit, (page - 1) * limit
}

func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
