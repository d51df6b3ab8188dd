// Package pagekit paginates query results with three strategies sharing one
// contract:
//
//   - Offset: pages addressed by number, LIMIT/OFFSET underneath.
//   - Cursor: keyset pagination continuing after the last row of the previous
//     page. It scales on large datasets and requires a deterministic ordering
//     ending with a unique column.
//   - Range: RFC 7233 flavoured 0-based inclusive windows, read from ?range=,
//     ?offset=&limit= or the Range header.
//
// Key concepts
//   - Query: the engine a paginator drives. GormQuery wraps a *gorm.DB,
//     MemoryQuery a slice.
//   - Paginators parse a RequestReader into a Request, fetch one extra row to
//     learn whether more pages exist and return a Pagination.
//   - Navigators compute neighbouring requests of a page without querying,
//     URIBuilders render them into links.
//   - Encoders turn cursor positions into tokens: PlainEncoder, SignedEncoder
//     and EncryptedEncoder compose as decorators.
//
// A typical handler:
//
//	paginator, _ := pagekit.NewCursorPaginator[User](cfg, getters)
//	page, err := paginator.Bind(pagekit.NewGormQuery[User](db.Model(&User{}),
//		pagekit.OrderBy{Column: "id", Direction: pagekit.DirectionASC},
//	)).PaginateHTTP(ctx, pagekit.FromHTTPRequest(r))
//	if err != nil {
//		return err
//	}
//	headers, _ := pagekit.CursorHeaders(page, paginator.URIBuilder(), r.URL)
//	headers.WriteHeaders(w)
package pagekit
