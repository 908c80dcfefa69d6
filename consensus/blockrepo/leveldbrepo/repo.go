// Package leveldbrepo is the default BlockRepository (spec §6), storing
// blocks keyed by height then hash so IterByHeight can stream them back in
// ascending order for Engine.Recover. Grounded on the teacher's
// database2/ffldb transaction.Put/Get/Cursor idiom and dbaccess's
// bucket-prefixed key convention (dbaccess/fee_data.go), but talking to
// goleveldb directly rather than through the teacher's own Database
// interface, since that interface's concrete ffldb backend did not survive
// the retrieval pack.
package leveldbrepo

import (
	"context"
	"encoding/binary"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/meridian-dag/consensus/consensus"
)

var blockBucket = []byte("blk/")

// Repository implements consensus.BlockRepository over a goleveldb handle.
type Repository struct {
	db *leveldb.DB
}

// Open opens (or creates) a leveldb database at path.
func Open(path string) (*Repository, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "couldn't open block repository at %s", path)
	}
	return &Repository{db: db}, nil
}

// Close releases the underlying database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Put persists block under a height-then-hash key so later IterByHeight
// scans return blocks in ascending height order without a secondary index.
func (r *Repository) Put(ctx context.Context, block *consensus.Block) error {
	data, err := consensus.Serialize(block)
	if err != nil {
		return err
	}
	key := blockKey(block.Header.Height, block.Header.Hash)
	if err := r.db.Put(key, data, nil); err != nil {
		return errors.Wrapf(err, "couldn't store block %s", block.Header.Hash)
	}
	return nil
}

// Get looks a block up by hash. Keys are prefixed by height and there is no
// hash index, so it decodes stored blocks one by one until the hash matches:
// a full scan of the block bucket in the worst case. The engine's own
// DagStore is the hot-path lookup; BlockRepository only backs persistence
// and Recover.
func (r *Repository) Get(ctx context.Context, h consensus.Hash) (*consensus.Block, bool, error) {
	iter := r.db.NewIterator(util.BytesPrefix(blockBucket), nil)
	defer iter.Release()
	for iter.Next() {
		block, err := consensus.Deserialize(iter.Value())
		if err != nil {
			return nil, false, err
		}
		if block.Header.Hash == h {
			return block, true, nil
		}
	}
	if err := iter.Error(); err != nil {
		return nil, false, err
	}
	return nil, false, nil
}

// IterByHeight streams every stored block in ascending height order, since
// blockKey's height prefix sorts byte-lexicographically the same as
// numerically (spec §5 recovery contract).
func (r *Repository) IterByHeight(ctx context.Context) (<-chan *consensus.Block, error) {
	out := make(chan *consensus.Block)
	go func() {
		defer close(out)
		iter := r.db.NewIterator(util.BytesPrefix(blockBucket), nil)
		defer iter.Release()
		for iter.Next() {
			select {
			case <-ctx.Done():
				return
			default:
			}
			block, err := consensus.Deserialize(iter.Value())
			if err != nil {
				log.WithError(err).Warn("skipping corrupt block record during recovery")
				continue
			}
			select {
			case out <- block:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func blockKey(height uint64, h consensus.Hash) []byte {
	key := make([]byte, 0, len(blockBucket)+8+len(h))
	key = append(key, blockBucket...)
	var heightBytes [8]byte
	binary.BigEndian.PutUint64(heightBytes[:], height)
	key = append(key, heightBytes[:]...)
	key = append(key, h[:]...)
	return key
}
