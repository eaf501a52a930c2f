package wmpostgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/UnendingLoop/ProductWatermark/internal/model"
	"github.com/lib/pq"
	"github.com/wb-go/wbf/dbpg"
)

type PostgresRepo struct {
	DB *dbpg.DB
}

// ---------- настройки ----------

func (p PostgresRepo) GetSettings(ctx context.Context) (map[string]string, error) {
	query := `SELECT key, value FROM settings WHERE key = ANY($1)`

	rows, err := p.DB.QueryContext(ctx, query, pq.Array(model.SettingsKeys))
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("Error while closing *sql.Rows after scanning: %v", err)
		}
	}()

	res := make(map[string]string, len(model.SettingsKeys))
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		res[k] = v
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return res, nil
}

// SaveSettings upserts all values in one transaction.
func (p PostgresRepo) SaveSettings(ctx context.Context, values map[string]string) error {
	query := `INSERT INTO settings (key, value) VALUES ($1, $2)
	ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`

	tx, err := p.DB.Master.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	for k, v := range values {
		if _, err := tx.ExecContext(ctx, query, k, v); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Printf("Failed to rollback settings tx: %v", rbErr)
			}
			return fmt.Errorf("save setting %q: %w", k, err)
		}
	}

	return tx.Commit()
}

func (p PostgresRepo) ListImageTypes(ctx context.Context) ([]model.ImageType, error) {
	query := `SELECT id, name, width, height 
	FROM image_types 
	WHERE products = true 
	ORDER BY id`

	rows, err := p.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("Error while closing *sql.Rows after scanning: %v", err)
		}
	}()

	types := make([]model.ImageType, 0)
	for rows.Next() {
		var it model.ImageType
		if err := rows.Scan(&it.ID, &it.Name, &it.Width, &it.Height); err != nil {
			return nil, err
		}
		types = append(types, it)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return types, nil
}

// ---------- задания ----------

func (p PostgresRepo) CreateJob(ctx context.Context, j *model.Job) error {
	query := `INSERT INTO watermark_jobs (job_uid, batch_id, image_id, product_id, shop_id, image_types, status, err_msg, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := p.DB.Master.ExecContext(ctx, query, j.UID, j.BatchID, j.ImageID, j.ProductID, j.ShopID,
		pq.Array(j.ImageTypes), j.Status, j.ErrMsg, j.CreatedAt, j.CreatedAt)
	return err
}

func (p PostgresRepo) GetJob(ctx context.Context, id string) (*model.Job, error) {
	query := `SELECT job_uid, batch_id, image_id, product_id, shop_id, image_types, status, err_msg, created_at, updated_at 
	FROM watermark_jobs 
	WHERE job_uid = $1`
	var job model.Job

	err := p.DB.QueryRowContext(ctx, query, id).Scan(&job.UID,
		&job.BatchID,
		&job.ImageID,
		&job.ProductID,
		&job.ShopID,
		pq.Array(&job.ImageTypes),
		&job.Status,
		&job.ErrMsg,
		&job.CreatedAt,
		&job.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, model.ErrJobNotFound
		default:
			return nil, err // 500
		}
	}
	return &job, nil
}

// ListJobs expects req to be normalised already: Sort and Order are inlined into the query.
func (p PostgresRepo) ListJobs(ctx context.Context, req *model.ListRequest) ([]model.Job, error) {
	query := fmt.Sprintf(`SELECT job_uid, batch_id, image_id, product_id, shop_id, status, err_msg, created_at, updated_at 
	FROM watermark_jobs
	ORDER BY %s %s 
	LIMIT $1 
	OFFSET $2`, req.Sort, req.Order)

	offset := (req.Page - 1) * req.Limit

	rows, err := p.DB.QueryContext(ctx, query, req.Limit, offset)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("Error while closing *sql.Rows after scanning: %v", err)
		}
	}()

	jobs := make([]model.Job, 0, req.Limit)
	for rows.Next() {
		var job model.Job
		if err := rows.Scan(&job.UID,
			&job.BatchID,
			&job.ImageID,
			&job.ProductID,
			&job.ShopID,
			&job.Status,
			&job.ErrMsg,
			&job.CreatedAt,
			&job.UpdatedAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return jobs, nil
}

func (p PostgresRepo) DeleteJob(ctx context.Context, id string) error {
	query := `DELETE FROM watermark_jobs
	WHERE job_uid = $1`

	res, err := p.DB.Master.ExecContext(ctx, query, id)
	if err != nil {
		return err // 500
	}
	return affectedOrNotFound(res)
}

func (p PostgresRepo) UpdateStatus(ctx context.Context, id string, newStat model.Status) error {
	query := `UPDATE watermark_jobs SET status = $1, updated_at = now() WHERE job_uid = $2`

	res, err := p.DB.Master.ExecContext(ctx, query, newStat, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (p PostgresRepo) SaveResult(ctx context.Context, id string, status model.Status, errMsg model.StringSlice) error {
	query := `UPDATE watermark_jobs SET status = $1, err_msg = $2, updated_at = now() WHERE job_uid = $3`

	res, err := p.DB.Master.ExecContext(ctx, query, status, errMsg, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (p PostgresRepo) FetchOrphans(ctx context.Context, limit int) ([]string, error) {
	query := `SELECT job_uid 
	FROM watermark_jobs 
	WHERE status IN ($1, $2) 
	AND updated_at < now() - interval '10 minutes'
	LIMIT $3`

	rows, err := p.DB.QueryContext(ctx, query, model.StatusCreated, model.StatusInProgress, limit)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("Error while closing *sql.Rows after scanning: %v", err)
		}
	}()

	orphans := make([]string, 0, limit)
	for rows.Next() {
		uid := ""
		if err := rows.Scan(&uid); err != nil {
			return nil, err
		}
		orphans = append(orphans, uid)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return orphans, nil
}

func affectedOrNotFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrJobNotFound // 404
	}
	return nil
}
