//
// Tencent is pleased to support the open source community by making p4clreport available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// p4clreport is licensed under the Apache License Version 2.0.
//

package changes

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/panjf2000/ants/v2"
)

const poolReleaseTimeout = 5 * time.Second

type fileListingParam struct {
	ctx    context.Context
	c      *Collector
	record *ChangeRecord
	mu     *sync.Mutex
	errs   **multierror.Error
	wg     *sync.WaitGroup
}

func (p *fileListingParam) reset() {
	p.ctx = nil
	p.c = nil
	p.record = nil
	p.mu = nil
	p.errs = nil
	p.wg = nil
}

var fileListingParamPool = &sync.Pool{
	New: func() any { return new(fileListingParam) },
}

func createFileListingPool(size int) (*ants.PoolWithFunc, error) {
	if size <= 0 {
		return nil, errors.New("pool size must be greater than 0")
	}
	pool, err := ants.NewPoolWithFunc(size, func(args any) {
		param, ok := args.(*fileListingParam)
		if !ok {
			panic("file listing pool args type error")
		}
		wg := param.wg
		defer func() {
			wg.Done()
			param.reset()
			fileListingParamPool.Put(param)
		}()
		files, err := param.c.filesOf(param.ctx, param.record.ID)
		if err != nil {
			param.mu.Lock()
			*param.errs = multierror.Append(*param.errs, err)
			param.mu.Unlock()
			return
		}
		param.record.Files = files
	}, ants.WithDisablePurge(true))
	if err != nil {
		return nil, fmt.Errorf("create file listing pool: %w", err)
	}
	return pool, nil
}

// attachFilesPerChange lists each change's files with its own p4 call.
// With parallelism above one the calls share a bounded ants pool; records
// are updated in place so the output order never changes.
func (c *Collector) attachFilesPerChange(ctx context.Context, records []ChangeRecord) error {
	if c.parallelism <= 1 {
		for i := range records {
			files, err := c.filesOf(ctx, records[i].ID)
			if err != nil {
				return err
			}
			records[i].Files = files
		}
		return nil
	}

	pool, err := createFileListingPool(c.parallelism)
	if err != nil {
		return err
	}
	defer func() {
		_ = pool.ReleaseTimeout(poolReleaseTimeout)
	}()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs *multierror.Error
	)
	for i := range records {
		param := fileListingParamPool.Get().(*fileListingParam)
		param.ctx = ctx
		param.c = c
		param.record = &records[i]
		param.mu = &mu
		param.errs = &errs
		param.wg = &wg
		wg.Add(1)
		if err := pool.Invoke(param); err != nil {
			wg.Done()
			param.reset()
			fileListingParamPool.Put(param)
			mu.Lock()
			errs = multierror.Append(errs, fmt.Errorf("schedule change %d: %w", records[i].ID, err))
			mu.Unlock()
		}
	}
	wg.Wait()
	return errs.ErrorOrNil()
}
