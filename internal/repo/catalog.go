package repo

import (
	"context"
	"fmt"
)

// ListServices returns all services in catalog order.
func (r *Repository) ListServices(ctx context.Context) ([]Service, error) {
	const q = `
SELECT id, name, COALESCE(description, ''), price
FROM services
ORDER BY id ASC;
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var services []Service
	for rows.Next() {
		var s Service
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.Price); err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		services = append(services, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate services: %w", err)
	}
	return services, nil
}

// ListBarbers returns all barbers in catalog order.
func (r *Repository) ListBarbers(ctx context.Context) ([]Barber, error) {
	const q = `
SELECT id, name, COALESCE(specialty, '')
FROM barbers
ORDER BY id ASC;
`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list barbers: %w", err)
	}
	defer rows.Close()

	var barbers []Barber
	for rows.Next() {
		var b Barber
		if err := rows.Scan(&b.ID, &b.Name, &b.Specialty); err != nil {
			return nil, fmt.Errorf("scan barber: %w", err)
		}
		barbers = append(barbers, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate barbers: %w", err)
	}
	return barbers, nil
}
