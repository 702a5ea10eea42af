package board

import (
	"fmt"
	"strings"

	"github.com/iov-one/gavel"
	"github.com/iov-one/gavel/errors"
	"github.com/iov-one/gavel/migration"
	"github.com/iov-one/gavel/x"
	"github.com/tendermint/go-amino"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/common"
)

const (
	createProposalCost = 0
	endorsementCost    = 0
	startDelayCost     = 0
	executeCost        = 0
	metadataCost       = 0
	updateSettingsCost = 0
	updateMembersCost  = 0
)

const (
	tagProposalID = "proposal-id"
	tagProposer   = "proposer"
	tagAction     = "action"
	tagExecResult = "proposal-result"
)

// RegisterQuery registers board buckets for querying.
func RegisterQuery(qr gavel.QueryRouter) {
	NewProposalBucket().Register("proposals", qr)
	NewProposalIndexBucket().Register("proposals/index", qr)
	NewMemberBucket().Register("members", qr)
	NewApprovalBucket().Register("approvals", qr)
	NewConfirmBucket().Register("confirms", qr)
	NewRosterBucket().Register("roster", qr)
	qr.Register("/boardsettings", settingsQuery{})
}

// settingsQuery exposes the configuration singleton that is stored outside
// of any bucket.
type settingsQuery struct{}

var _ gavel.QueryHandler = settingsQuery{}

func (settingsQuery) Query(db gavel.ReadOnlyKVStore, mod string, data []byte) ([]gavel.Model, error) {
	if mod != gavel.KeyQueryMod {
		return nil, errors.Wrapf(errors.ErrInput, "unknown mod: %s", mod)
	}
	key := []byte("_c:" + packageName)
	value, err := db.Get(key)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, nil
	}
	return []gavel.Model{{Key: key, Value: value}}, nil
}

// RegisterRoutes registers handlers for board message processing. The
// decoder and executor define how raw proposal actions are turned into
// messages and applied. Wire the executor to the application router via
// HandlerAsExecutor so governance actions pass the same handlers as
// regular transactions.
func RegisterRoutes(r gavel.Registry, auth x.Authenticator, decoder ActionDecoder, executor Executor) {
	r = migration.SchemaMigratingRegistry(packageName, r)

	props := NewProposalBucket()
	members := NewMemberBucket()
	roster := NewRosterBucket()
	approvals := NewApprovalBucket()
	confirms := NewConfirmBucket()

	r.Handle(pathCreateProposalMsg, &createProposalHandler{
		auth:      auth,
		props:     props,
		index:     NewProposalIndexBucket(),
		members:   members,
		approvals: approvals,
	})
	r.Handle(pathApproveMsg, &approveHandler{
		auth:      auth,
		props:     props,
		approvals: approvals,
	})
	r.Handle(pathStartDelayMsg, &startDelayHandler{
		auth:  auth,
		props: props,
	})
	r.Handle(pathConfirmMsg, &confirmHandler{
		auth:     auth,
		props:    props,
		confirms: confirms,
	})
	r.Handle(pathExecuteMsg, &executeHandler{
		auth:     auth,
		props:    props,
		decoder:  decoder,
		executor: executor,
	})
	r.Handle(pathSetSecondaryMetadataMsg, &setSecondaryMetadataHandler{
		auth:  auth,
		props: props,
	})
	r.Handle(pathUpdateSettingsMsg, &updateSettingsHandler{
		auth: auth,
	})
	r.Handle(pathAddMembersMsg, &addMembersHandler{
		auth:    auth,
		members: members,
		roster:  roster,
	})
	r.Handle(pathRemoveMembersMsg, &removeMembersHandler{
		auth:    auth,
		members: members,
		roster:  roster,
	})
}

type createProposalHandler struct {
	auth      x.Authenticator
	props     *ProposalBucket
	index     *ProposalIndexBucket
	members   *MemberBucket
	approvals *EndorsementBucket
}

func (h *createProposalHandler) Check(ctx gavel.Context, db gavel.KVStore, tx gavel.Tx) (*gavel.CheckResult, error) {
	if _, _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &gavel.CheckResult{GasAllocated: createProposalCost}, nil
}

func (h *createProposalHandler) Deliver(ctx gavel.Context, db gavel.KVStore, tx gavel.Tx) (*gavel.DeliverResult, error) {
	msg, settings, creator, start, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	height, _ := gavel.GetHeight(ctx)
	now, err := blockNow(ctx)
	if err != nil {
		return nil, err
	}

	id, err := proposalID(creator, msg.RawMetadata, msg.RawActions, height)
	if err != nil {
		return nil, err
	}
	switch err := h.props.Has(db, id); {
	case err == nil:
		return nil, errors.Wrap(ErrCreateForbidden, "same proposal exists within this block")
	case errors.ErrNotFound.Is(err):
		// All good. The id is not taken yet.
	default:
		return nil, errors.Wrap(err, "cannot check if proposal is unique")
	}

	proposal := &Proposal{
		Metadata: &gavel.Metadata{Schema: 1},
		Parameters: ProposalParameters{
			MinApprovals:          settings.MinApprovals,
			MinConfirmations:      settings.MinConfirmations,
			EmergencyMinApprovals: settings.EmergencyMinApprovals,
			Emergency:             msg.Emergency,
			SnapshotHeight:        height - 1,
			StartDate:             start,
			EndDate:               msg.EndDate,
			DelayDuration:         settings.DelayDuration,
			MinExtraDuration:      settings.MinExtraDuration,
			MemberOnlyExecution:   settings.MemberOnlyExecution,
		},
		Creator:         creator,
		RawMetadata:     msg.RawMetadata,
		RawActions:      msg.RawActions,
		AllowFailureMap: msg.AllowFailureMap,
	}

	idx, err := h.index.Append(db, id)
	if err != nil {
		return nil, err
	}
	proposal.Index = idx

	if msg.ApproveNow {
		// The creator casts the first approval within the creation. Any
		// failure aborts the whole creation.
		switch ok, err := canApproveProposal(db, proposal, id, creator, now); {
		case err != nil:
			return nil, errors.Wrap(err, "approve now")
		case !ok:
			return nil, errors.Wrapf(ErrApproveForbidden, "creator %q cannot approve", creator)
		}
		proposal.Approvals++
		if err := h.approvals.Endorse(db, id, creator, now); err != nil {
			return nil, errors.Wrap(err, "approve now")
		}
	}

	if err := h.props.Update(db, id, proposal); err != nil {
		return nil, err
	}
	res := &gavel.DeliverResult{Data: id}
	res.Tags = append(res.Tags, []common.KVPair{
		{Key: []byte(tagProposalID), Value: id},
		{Key: []byte(tagProposer), Value: creator},
		{Key: []byte(tagAction), Value: []byte("create")},
	}...)
	return res, nil
}

func (h *createProposalHandler) validate(ctx gavel.Context, db gavel.KVStore, tx gavel.Tx) (*CreateProposalMsg, *Settings, gavel.Address, gavel.UnixTime, error) {
	var msg CreateProposalMsg
	if err := gavel.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, 0, errors.Wrap(err, "load msg")
	}
	height, ok := gavel.GetHeight(ctx)
	if !ok {
		return nil, nil, nil, 0, errors.Wrap(errors.ErrHuman, "block height not set")
	}
	now, err := blockNow(ctx)
	if err != nil {
		return nil, nil, nil, 0, err
	}
	settings, err := loadSettings(db)
	if err != nil {
		return nil, nil, nil, 0, err
	}

	creator := x.MainSigner(ctx, h.auth).Address()
	if len(creator) == 0 {
		return nil, nil, nil, 0, errors.Wrap(errors.ErrUnauthorized, "message must be signed")
	}
	if settings.OnlyListed {
		switch ok, err := IsMember(db, creator); {
		case err != nil:
			return nil, nil, nil, 0, err
		case !ok:
			return nil, nil, nil, 0, errors.Wrapf(ErrCreateForbidden, "creator %q is not a member", creator)
		}
	}
	// A settings change within this block invalidates the membership
	// snapshot the proposal would be built on.
	if settings.LastChangeHeight > height-1 {
		return nil, nil, nil, 0, errors.Wrap(ErrCreateForbidden, "settings changed within this block")
	}

	start := msg.StartDate
	if start == 0 {
		start = now
	} else if start < now {
		return nil, nil, nil, 0, errors.Wrapf(ErrDateOutOfBounds, "start date %s before %s", start, now)
	}
	minEnd := start.Add(settings.DelayDuration.Duration() + settings.MinExtraDuration.Duration())
	if msg.EndDate < minEnd {
		return nil, nil, nil, 0, errors.Wrapf(ErrDateOutOfBounds, "end date %s before %s", msg.EndDate, minEnd)
	}
	return &msg, settings, creator, start, nil
}

type approveHandler struct {
	auth      x.Authenticator
	props     *ProposalBucket
	approvals *EndorsementBucket
}

func (h *approveHandler) Check(ctx gavel.Context, db gavel.KVStore, tx gavel.Tx) (*gavel.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &gavel.CheckResult{GasAllocated: endorsementCost}, nil
}

func (h *approveHandler) Deliver(ctx gavel.Context, db gavel.KVStore, tx gavel.Tx) (*gavel.DeliverResult, error) {
	msg, proposal, signer, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := blockNow(ctx)
	if err != nil {
		return nil, err
	}
	proposal.Approvals++
	if err := h.approvals.Endorse(db, msg.ProposalID, signer, now); err != nil {
		return nil, err
	}
	if err := h.props.Update(db, msg.ProposalID, proposal); err != nil {
		return nil, err
	}
	res := &gavel.DeliverResult{}
	res.Tags = append(res.Tags, []common.KVPair{
		{Key: []byte(tagProposalID), Value: msg.ProposalID},
		{Key: []byte(tagAction), Value: []byte("approve")},
	}...)
	return res, nil
}

func (h *approveHandler) validate(ctx gavel.Context, db gavel.KVStore, tx gavel.Tx) (*ApproveMsg, *Proposal, gavel.Address, error) {
	var msg ApproveMsg
	if err := gavel.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}
	proposal, err := h.props.GetProposal(db, msg.ProposalID)
	if err != nil {
		return nil, nil, nil, err
	}
	now, err := blockNow(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	signer := x.MainSigner(ctx, h.auth).Address()
	switch ok, err := canApproveProposal(db, proposal, msg.ProposalID, signer, now); {
	case err != nil:
		return nil, nil, nil, err
	case !ok:
		return nil, nil, nil, errors.Wrapf(ErrApproveForbidden, "proposal %x signer %q", msg.ProposalID, signer)
	}
	return &msg, proposal, signer, nil
}

type startDelayHandler struct {
	auth  x.Authenticator
	props *ProposalBucket
}

func (h *startDelayHandler) Check(ctx gavel.Context, db gavel.KVStore, tx gavel.Tx) (*gavel.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &gavel.CheckResult{GasAllocated: startDelayCost}, nil
}

func (h *startDelayHandler) Deliver(ctx gavel.Context, db gavel.KVStore, tx gavel.Tx) (*gavel.DeliverResult, error) {
	msg, proposal, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := blockNow(ctx)
	if err != nil {
		return nil, err
	}
	// One-shot latch. Once set it is never reset, so there is exactly one
	// delay window per proposal.
	proposal.DelayStart = now
	if err := h.props.Update(db, msg.ProposalID, proposal); err != nil {
		return nil, err
	}
	res := &gavel.DeliverResult{}
	res.Tags = append(res.Tags, []common.KVPair{
		{Key: []byte(tagProposalID), Value: msg.ProposalID},
		{Key: []byte(tagAction), Value: []byte("start-delay")},
	}...)
	return res, nil
}

func (h *startDelayHandler) validate(ctx gavel.Context, db gavel.KVStore, tx gavel.Tx) (*StartDelayMsg, *Proposal, error) {
	var msg StartDelayMsg
	if err := gavel.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	proposal, err := h.props.GetProposal(db, msg.ProposalID)
	if err != nil {
		return nil, nil, err
	}
	now, err := blockNow(ctx)
	if err != nil {
		return nil, nil, err
	}
	if proposal.Parameters.EndDate < now {
		return nil, nil, errors.Wrap(ErrDelayForbidden, "proposal end date passed")
	}
	if proposal.Parameters.Emergency {
		return nil, nil, errors.Wrap(ErrDelayForbidden, "emergency proposals have no delay")
	}
	if proposal.DelayStart != 0 {
		return nil, nil, errors.Wrap(ErrDelayForbidden, "delay already started")
	}
	signer := x.MainSigner(ctx, h.auth).Address()
	switch ok, err := IsMemberAt(db, signer, proposal.Parameters.SnapshotHeight); {
	case err != nil:
		return nil, nil, err
	case !ok:
		return nil, nil, errors.Wrapf(ErrNotMember, "signer %q", signer)
	}
	if proposal.Approvals < proposal.Parameters.MinApprovals {
		return nil, nil, errors.Wrapf(ErrInsufficientApprovals, "%d of %d",
			proposal.Approvals, proposal.Parameters.MinApprovals)
	}
	return &msg, proposal, nil
}

type confirmHandler struct {
	auth     x.Authenticator
	props    *ProposalBucket
	confirms *EndorsementBucket
}

func (h *confirmHandler) Check(ctx gavel.Context, db gavel.KVStore, tx gavel.Tx) (*gavel.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &gavel.CheckResult{GasAllocated: endorsementCost}, nil
}

func (h *confirmHandler) Deliver(ctx gavel.Context, db gavel.KVStore, tx gavel.Tx) (*gavel.DeliverResult, error) {
	msg, proposal, signer, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := blockNow(ctx)
	if err != nil {
		return nil, err
	}
	proposal.Confirmations++
	if err := h.confirms.Endorse(db, msg.ProposalID, signer, now); err != nil {
		return nil, err
	}
	if err := h.props.Update(db, msg.ProposalID, proposal); err != nil {
		return nil, err
	}
	res := &gavel.DeliverResult{}
	res.Tags = append(res.Tags, []common.KVPair{
		{Key: []byte(tagProposalID), Value: msg.ProposalID},
		{Key: []byte(tagAction), Value: []byte("confirm")},
	}...)
	return res, nil
}

func (h *confirmHandler) validate(ctx gavel.Context, db gavel.KVStore, tx gavel.Tx) (*ConfirmMsg, *Proposal, gavel.Address, error) {
	var msg ConfirmMsg
	if err := gavel.LoadMsg(tx, &msg); err != nil {
		return nil, nil, nil, errors.Wrap(err, "load msg")
	}
	proposal, err := h.props.GetProposal(db, msg.ProposalID)
	if err != nil {
		return nil, nil, nil, err
	}
	now, err := blockNow(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	signer := x.MainSigner(ctx, h.auth).Address()
	switch ok, err := canConfirmProposal(db, proposal, msg.ProposalID, signer, now); {
	case err != nil:
		return nil, nil, nil, err
	case !ok:
		return nil, nil, nil, errors.Wrapf(ErrConfirmForbidden, "proposal %x signer %q", msg.ProposalID, signer)
	}
	return &msg, proposal, signer, nil
}

type executeHandler struct {
	auth     x.Authenticator
	props    *ProposalBucket
	decoder  ActionDecoder
	executor Executor
}

func (h *executeHandler) Check(ctx gavel.Context, db gavel.KVStore, tx gavel.Tx) (*gavel.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &gavel.CheckResult{GasAllocated: executeCost}, nil
}

func (h *executeHandler) Deliver(ctx gavel.Context, db gavel.KVStore, tx gavel.Tx) (*gavel.DeliverResult, error) {
	msg, proposal, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	// The executed flag is persisted before any action runs, so that an
	// action reentering the board cannot trigger a second execution and a
	// failed execution still closes the proposal.
	proposal.Executed = true
	if err := h.props.Update(db, msg.ProposalID, proposal); err != nil {
		return nil, err
	}

	cstore, ok := db.(gavel.CacheableKVStore)
	if !ok {
		return nil, errors.Wrap(errors.ErrHuman, "store cannot be cache wrapped")
	}
	// All action writes go into one batch so that a non allowed failure
	// can drop every action while the executed flag stays.
	batch := cstore.CacheWrap()
	execCtx := withProposalExecution(ctx, msg.ProposalID)

	res := &gavel.DeliverResult{}
	datas := make([][]byte, len(proposal.RawActions))
	var logs []string
	var tags []common.KVPair
	var diff []abci.ValidatorUpdate

	for i, raw := range proposal.RawActions {
		var out *gavel.DeliverResult
		actionMsg, err := h.decoder(raw)
		if err == nil {
			// Each action runs under its own savepoint, so an allowed
			// failure drops only its own writes.
			cache := batch.CacheWrap()
			out, err = h.executor(execCtx, cache, actionMsg)
			if err != nil {
				cache.Discard()
			} else if werr := cache.Write(); werr != nil {
				err = errors.Wrap(werr, "writing action savepoint")
			}
		}
		if err != nil {
			if proposal.AllowFailureMap&(1<<uint(i)) == 0 {
				batch.Discard()
				res.Log = fmt.Sprintf("action %d failed: %v", i, err)
				res.Tags = append(res.Tags, executionTags(msg.ProposalID, false)...)
				return res, nil
			}
			logs = append(logs, fmt.Sprintf("action %d failed: %v", i, err))
			continue
		}
		datas[i] = out.Data
		if out.Log != "" {
			logs = append(logs, out.Log)
		}
		tags = append(tags, out.Tags...)
		diff = append(diff, out.Diff...)
		res.GasUsed += out.GasUsed
	}

	if err := batch.Write(); err != nil {
		return nil, errors.Wrap(err, "writing execution batch")
	}
	res.Data = amino.MustMarshalBinaryLengthPrefixed(datas)
	res.Log = strings.Join(logs, "\n")
	res.Diff = diff
	res.Tags = append(tags, executionTags(msg.ProposalID, true)...)
	return res, nil
}

func executionTags(proposalID []byte, success bool) []common.KVPair {
	result := "success"
	if !success {
		result = "failure"
	}
	return []common.KVPair{
		{Key: []byte(tagProposalID), Value: proposalID},
		{Key: []byte(tagAction), Value: []byte("execute")},
		{Key: []byte(tagExecResult), Value: []byte(result)},
	}
}

func (h *executeHandler) validate(ctx gavel.Context, db gavel.KVStore, tx gavel.Tx) (*ExecuteMsg, *Proposal, error) {
	var msg ExecuteMsg
	if err := gavel.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	proposal, err := h.props.GetProposal(db, msg.ProposalID)
	if err != nil {
		return nil, nil, err
	}
	now, err := blockNow(ctx)
	if err != nil {
		return nil, nil, err
	}
	signer := x.MainSigner(ctx, h.auth).Address()
	switch ok, err := canExecuteProposal(db, proposal, signer, now); {
	case err != nil:
		return nil, nil, err
	case !ok:
		return nil, nil, errors.Wrapf(ErrExecuteForbidden, "proposal %x", msg.ProposalID)
	}
	return &msg, proposal, nil
}

type setSecondaryMetadataHandler struct {
	auth  x.Authenticator
	props *ProposalBucket
}

func (h *setSecondaryMetadataHandler) Check(ctx gavel.Context, db gavel.KVStore, tx gavel.Tx) (*gavel.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &gavel.CheckResult{GasAllocated: metadataCost}, nil
}

func (h *setSecondaryMetadataHandler) Deliver(ctx gavel.Context, db gavel.KVStore, tx gavel.Tx) (*gavel.DeliverResult, error) {
	msg, proposal, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	// Repeatable until the proposal closes. The last write wins.
	proposal.SecondaryMetadata = msg.SecondaryMetadata
	if err := h.props.Update(db, msg.ProposalID, proposal); err != nil {
		return nil, err
	}
	res := &gavel.DeliverResult{}
	res.Tags = append(res.Tags, []common.KVPair{
		{Key: []byte(tagProposalID), Value: msg.ProposalID},
		{Key: []byte(tagAction), Value: []byte("set-secondary-metadata")},
	}...)
	return res, nil
}

func (h *setSecondaryMetadataHandler) validate(ctx gavel.Context, db gavel.KVStore, tx gavel.Tx) (*SetSecondaryMetadataMsg, *Proposal, error) {
	var msg SetSecondaryMetadataMsg
	if err := gavel.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	settings, err := loadSettings(db)
	if err != nil {
		return nil, nil, err
	}
	if !h.auth.HasAddress(ctx, settings.Admin) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "admin signature required")
	}
	proposal, err := h.props.GetProposal(db, msg.ProposalID)
	if err != nil {
		return nil, nil, err
	}
	now, err := blockNow(ctx)
	if err != nil {
		return nil, nil, err
	}
	if proposal.Executed || proposal.Parameters.EndDate < now {
		return nil, nil, errors.Wrapf(ErrMetadataForbidden, "proposal %x closed", msg.ProposalID)
	}
	return &msg, proposal, nil
}

type updateSettingsHandler struct {
	auth x.Authenticator
}

func (h *updateSettingsHandler) Check(ctx gavel.Context, db gavel.KVStore, tx gavel.Tx) (*gavel.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &gavel.CheckResult{GasAllocated: updateSettingsCost}, nil
}

func (h *updateSettingsHandler) Deliver(ctx gavel.Context, db gavel.KVStore, tx gavel.Tx) (*gavel.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	height, ok := gavel.GetHeight(ctx)
	if !ok {
		return nil, errors.Wrap(errors.ErrHuman, "block height not set")
	}
	next := msg.Settings
	next.LastChangeHeight = height
	if err := saveSettings(db, &next); err != nil {
		return nil, err
	}
	res := &gavel.DeliverResult{}
	res.Tags = append(res.Tags, common.KVPair{
		Key: []byte(tagAction), Value: []byte("update-settings"),
	})
	return res, nil
}

func (h *updateSettingsHandler) validate(ctx gavel.Context, db gavel.KVStore, tx gavel.Tx) (*UpdateSettingsMsg, error) {
	var msg UpdateSettingsMsg
	if err := gavel.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	current, err := loadSettings(db)
	if err != nil {
		return nil, err
	}
	if !h.auth.HasAddress(ctx, current.Admin) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "admin signature required")
	}
	count, err := MemberCount(db)
	if err != nil {
		return nil, err
	}
	if err := validateThresholds(&msg.Settings, count); err != nil {
		return nil, err
	}
	return &msg, nil
}

type addMembersHandler struct {
	auth    x.Authenticator
	members *MemberBucket
	roster  *RosterBucket
}

func (h *addMembersHandler) Check(ctx gavel.Context, db gavel.KVStore, tx gavel.Tx) (*gavel.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &gavel.CheckResult{GasAllocated: updateMembersCost}, nil
}

func (h *addMembersHandler) Deliver(ctx gavel.Context, db gavel.KVStore, tx gavel.Tx) (*gavel.DeliverResult, error) {
	msg, roster, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	height, ok := gavel.GetHeight(ctx)
	if !ok {
		return nil, errors.Wrap(errors.ErrHuman, "block height not set")
	}
	for _, addr := range msg.Addresses {
		m, err := h.members.GetMember(db, addr)
		if err != nil {
			return nil, err
		}
		if m != nil && m.MemberNow() {
			return nil, errors.Wrapf(errors.ErrDuplicate, "address %q already a member", addr)
		}
		if m == nil {
			m = &Member{
				Metadata: &gavel.Metadata{Schema: 1},
				Address:  addr,
			}
		}
		m.Checkpoints = append(m.Checkpoints, MemberCheckpoint{Height: height, Member: true})
		if err := h.members.Update(db, m); err != nil {
			return nil, err
		}
		roster.MemberCount++
	}
	if err := h.roster.Update(db, roster); err != nil {
		return nil, err
	}
	res := &gavel.DeliverResult{}
	res.Tags = append(res.Tags, common.KVPair{
		Key: []byte(tagAction), Value: []byte("add-members"),
	})
	return res, nil
}

func (h *addMembersHandler) validate(ctx gavel.Context, db gavel.KVStore, tx gavel.Tx) (*AddMembersMsg, *Roster, error) {
	var msg AddMembersMsg
	if err := gavel.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	settings, err := loadSettings(db)
	if err != nil {
		return nil, nil, err
	}
	if !h.auth.HasAddress(ctx, settings.Admin) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "admin signature required")
	}
	roster, err := h.roster.GetRoster(db)
	if err != nil {
		return nil, nil, err
	}
	if int64(roster.MemberCount)+int64(len(msg.Addresses)) > maxMembers {
		return nil, nil, errors.Wrapf(ErrAddressListSize, "more than %d members", maxMembers)
	}
	return &msg, roster, nil
}

type removeMembersHandler struct {
	auth    x.Authenticator
	members *MemberBucket
	roster  *RosterBucket
}

func (h *removeMembersHandler) Check(ctx gavel.Context, db gavel.KVStore, tx gavel.Tx) (*gavel.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &gavel.CheckResult{GasAllocated: updateMembersCost}, nil
}

func (h *removeMembersHandler) Deliver(ctx gavel.Context, db gavel.KVStore, tx gavel.Tx) (*gavel.DeliverResult, error) {
	msg, roster, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	height, ok := gavel.GetHeight(ctx)
	if !ok {
		return nil, errors.Wrap(errors.ErrHuman, "block height not set")
	}
	for _, addr := range msg.Addresses {
		m, err := h.members.GetMember(db, addr)
		if err != nil {
			return nil, err
		}
		if m == nil || !m.MemberNow() {
			return nil, errors.Wrapf(ErrNotMember, "address %q", addr)
		}
		m.Checkpoints = append(m.Checkpoints, MemberCheckpoint{Height: height, Member: false})
		if err := h.members.Update(db, m); err != nil {
			return nil, err
		}
		roster.MemberCount--
	}
	if err := h.roster.Update(db, roster); err != nil {
		return nil, err
	}
	res := &gavel.DeliverResult{}
	res.Tags = append(res.Tags, common.KVPair{
		Key: []byte(tagAction), Value: []byte("remove-members"),
	})
	return res, nil
}

func (h *removeMembersHandler) validate(ctx gavel.Context, db gavel.KVStore, tx gavel.Tx) (*RemoveMembersMsg, *Roster, error) {
	var msg RemoveMembersMsg
	if err := gavel.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	settings, err := loadSettings(db)
	if err != nil {
		return nil, nil, err
	}
	if !h.auth.HasAddress(ctx, settings.Admin) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "admin signature required")
	}
	roster, err := h.roster.GetRoster(db)
	if err != nil {
		return nil, nil, err
	}
	// The removal is bounded before the member list is touched, so a batch
	// that would drop below the emergency threshold fails as a whole.
	post := int64(roster.MemberCount) - int64(len(msg.Addresses))
	if post < int64(settings.EmergencyMinApprovals) {
		return nil, nil, errors.Wrapf(ErrMinApprovals, "%d members left, %d required",
			post, settings.EmergencyMinApprovals)
	}
	return &msg, roster, nil
}

// blockNow returns the current block time.
func blockNow(ctx gavel.Context) (gavel.UnixTime, error) {
	blockTime, err := gavel.BlockTime(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "block time")
	}
	return gavel.AsUnixTime(blockTime), nil
}
