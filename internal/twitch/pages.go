package twitch

import "context"

// maxPages bounds cursor pagination in case the API keeps returning a cursor
const maxPages = 50

// fetchPages follows Helix cursor pagination until the cursor runs out
func fetchPages[T any](
	ctx context.Context,
	fetch func(ctx context.Context, cursor string) ([]T, string, error),
) ([]T, error) {
	var all []T
	cursor := ""

	for page := 0; page < maxPages; page++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		items, next, err := fetch(ctx, cursor)
		if err != nil {
			return nil, err
		}

		all = append(all, items...)

		if next == "" || next == cursor || len(items) == 0 {
			break
		}
		cursor = next
	}

	return all, nil
}
