package postgres

import (
	"database/sql"

	"github.com/jackc/pgx/v5/pgtype"
)

// scanner cubre *sql.Row y *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// textArray escanea text[] a []string vía pgtype. pgtype.Map no es seguro
// para uso concurrente, por eso uno por llamada.
func textArray(dst *[]string) sql.Scanner {
	return pgtype.NewMap().SQLScanner(dst)
}

func expectOneRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
