package aerospike

import (
	"context"
	"time"

	aero "github.com/aerospike/aerospike-client-go/v7"

	"github.com/ajitpratap0/kvbridge/pkg/kverrors"
	"github.com/ajitpratap0/kvbridge/pkg/policy"
)

// basePolicy translates the shared fields and caps the total timeout at the
// context deadline, so that ctx bounds the command like every other backend.
func basePolicy(ctx context.Context, b policy.Base) (*aero.BasePolicy, error) {
	p := aero.NewPolicy()
	p.SocketTimeout = b.SocketTimeout
	p.TotalTimeout = b.TotalTimeout
	p.MaxRetries = b.MaxRetries
	p.SleepBetweenRetries = b.SleepBetweenRetries
	if b.FilterExpression != nil {
		exp, err := toAeroExpression(b.FilterExpression)
		if err != nil {
			return nil, err
		}
		p.FilterExpression = exp
	}
	if err := capDeadline(ctx, &p.TotalTimeout, &p.SocketTimeout); err != nil {
		return nil, err
	}
	return p, nil
}

func capDeadline(ctx context.Context, total, socket *time.Duration) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		return nil
	}
	left := time.Until(deadline)
	if left <= 0 {
		return kverrors.New(kverrors.TimeoutError, "context deadline already passed")
	}
	if *total == 0 || left < *total {
		*total = left
	}
	if *socket == 0 || *socket > *total {
		*socket = *total
	}
	return nil
}

func readPolicy(ctx context.Context, p *policy.Read) (*aero.BasePolicy, error) {
	if p == nil {
		p = policy.DefaultRead()
	}
	return basePolicy(ctx, p.Base)
}

func writePolicy(ctx context.Context, p *policy.Write) (*aero.WritePolicy, error) {
	if p == nil {
		p = policy.DefaultWrite()
	}
	base, err := basePolicy(ctx, p.Base)
	if err != nil {
		return nil, err
	}
	wp := aero.NewWritePolicy(0, 0)
	wp.BasePolicy = *base
	wp.SendKey = p.Key == policy.KeySend
	wp.RecordExistsAction = existsAction(p.Exists)
	wp.GenerationPolicy = generationPolicy(p.Gen)
	wp.Generation = p.Generation
	wp.CommitLevel = commitLevel(p.CommitLevel)
	wp.Expiration = expiration(p.TTL)
	wp.DurableDelete = p.DurableDelete
	// Every operation answers, so results can be matched to operations.
	wp.RespondPerEachOp = true
	return wp, nil
}

func batchPolicy(ctx context.Context, p *policy.Batch) (*aero.BatchPolicy, error) {
	if p == nil {
		p = policy.DefaultBatch()
	}
	base, err := basePolicy(ctx, p.Base)
	if err != nil {
		return nil, err
	}
	bp := aero.NewBatchPolicy()
	bp.BasePolicy = *base
	bp.AllowInline = p.AllowInline
	bp.AllowInlineSSD = p.AllowInlineSSD
	bp.RespondAllKeys = p.RespondAllKeys
	bp.ConcurrentNodes = p.ConcurrentNodes
	return bp, nil
}

// batchWritePolicy carries the write policy's own filter; the batch policy's
// filter applies to every record regardless.
func batchWritePolicy(p *policy.Write) (*aero.BatchWritePolicy, error) {
	if p == nil {
		p = policy.DefaultWrite()
	}
	exp, err := optionalExpression(p.FilterExpression)
	if err != nil {
		return nil, err
	}
	bw := aero.NewBatchWritePolicy()
	bw.FilterExpression = exp
	bw.SendKey = p.Key == policy.KeySend
	bw.RecordExistsAction = existsAction(p.Exists)
	bw.GenerationPolicy = generationPolicy(p.Gen)
	bw.Generation = p.Generation
	bw.CommitLevel = commitLevel(p.CommitLevel)
	bw.Expiration = expiration(p.TTL)
	bw.DurableDelete = p.DurableDelete
	return bw, nil
}

func batchDeletePolicy(p *policy.Write) (*aero.BatchDeletePolicy, error) {
	if p == nil {
		p = policy.DefaultWrite()
	}
	exp, err := optionalExpression(p.FilterExpression)
	if err != nil {
		return nil, err
	}
	bd := aero.NewBatchDeletePolicy()
	bd.FilterExpression = exp
	bd.SendKey = p.Key == policy.KeySend
	bd.GenerationPolicy = generationPolicy(p.Gen)
	bd.Generation = p.Generation
	bd.CommitLevel = commitLevel(p.CommitLevel)
	bd.DurableDelete = p.DurableDelete
	return bd, nil
}

func queryPolicy(ctx context.Context, p *policy.Query) (*aero.QueryPolicy, error) {
	if p == nil {
		p = policy.DefaultQuery()
	}
	base, err := basePolicy(ctx, p.Base)
	if err != nil {
		return nil, err
	}
	qp := aero.NewQueryPolicy()
	qp.BasePolicy = *base
	qp.MaxRecords = p.MaxRecords
	qp.RecordsPerSecond = p.RecordsPerSecond
	qp.MaxConcurrentNodes = p.MaxConcurrentNodes
	qp.RecordQueueSize = p.RecordQueueSize
	qp.IncludeBinData = p.IncludeBinData
	return qp, nil
}

func scanPolicy(ctx context.Context, p *policy.Query) (*aero.ScanPolicy, error) {
	if p == nil {
		p = policy.DefaultQuery()
	}
	base, err := basePolicy(ctx, p.Base)
	if err != nil {
		return nil, err
	}
	sp := aero.NewScanPolicy()
	sp.BasePolicy = *base
	sp.MaxRecords = p.MaxRecords
	sp.RecordsPerSecond = p.RecordsPerSecond
	sp.MaxConcurrentNodes = p.MaxConcurrentNodes
	sp.RecordQueueSize = p.RecordQueueSize
	sp.IncludeBinData = p.IncludeBinData
	return sp, nil
}

func adminPolicy(ctx context.Context, p *policy.Admin) (*aero.AdminPolicy, error) {
	if p == nil {
		p = policy.DefaultAdmin()
	}
	ap := aero.NewAdminPolicy()
	ap.Timeout = p.Timeout
	var socket time.Duration
	if err := capDeadline(ctx, &ap.Timeout, &socket); err != nil {
		return nil, err
	}
	return ap, nil
}

func infoPolicy(ctx context.Context, p *policy.Info) (*aero.InfoPolicy, error) {
	if p == nil {
		p = policy.DefaultInfo()
	}
	ip := aero.NewInfoPolicy()
	ip.Timeout = p.Timeout
	var socket time.Duration
	if err := capDeadline(ctx, &ip.Timeout, &socket); err != nil {
		return nil, err
	}
	return ip, nil
}

// infoWritePolicy is the write policy of index and UDF commands, which the
// client bounds by TotalTimeout.
func infoWritePolicy(ctx context.Context, p *policy.Info) (*aero.WritePolicy, error) {
	ip, err := infoPolicy(ctx, p)
	if err != nil {
		return nil, err
	}
	wp := aero.NewWritePolicy(0, 0)
	wp.TotalTimeout = ip.Timeout
	return wp, nil
}

func existsAction(e policy.RecordExists) aero.RecordExistsAction {
	switch e {
	case policy.ExistsUpdateOnly:
		return aero.UPDATE_ONLY
	case policy.ExistsReplace:
		return aero.REPLACE
	case policy.ExistsReplaceOnly:
		return aero.REPLACE_ONLY
	case policy.ExistsCreateOnly:
		return aero.CREATE_ONLY
	default:
		return aero.UPDATE
	}
}

func generationPolicy(g policy.GenPolicy) aero.GenerationPolicy {
	switch g {
	case policy.GenEQ:
		return aero.EXPECT_GEN_EQUAL
	case policy.GenGT:
		return aero.EXPECT_GEN_GT
	default:
		return aero.NONE
	}
}

func commitLevel(c policy.CommitLevel) aero.CommitLevel {
	if c == policy.CommitMaster {
		return aero.COMMIT_MASTER
	}
	return aero.COMMIT_ALL
}

// expiration maps a write TTL onto the client's unsigned expiration. The
// client default resolves to the namespace default.
func expiration(ttl policy.TTL) uint32 {
	switch {
	case ttl == policy.TTLNeverExpire:
		return aero.TTLDontExpire
	case ttl == policy.TTLDontUpdate:
		return aero.TTLDontUpdate
	case ttl <= 0:
		return aero.TTLServerDefault
	default:
		return uint32(ttl)
	}
}
