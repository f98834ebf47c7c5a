// Copyright (C) 2019-2025 Algorand, Inc.
// This file is part of go-griefing
//
// go-griefing is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// go-griefing is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with go-griefing.  If not, see <https://www.gnu.org/licenses/>.

package assets

import (
	"github.com/algorand/go-griefing/crypto"
	"github.com/algorand/go-griefing/data/basics"
	"github.com/algorand/go-griefing/ledger"
	"github.com/algorand/go-griefing/protocol"
)

// TransferBody is the Transfer notification. A zero From is a mint.
type TransferBody struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	From   basics.Address `codec:"from"`
	To     basics.Address `codec:"to"`
	Amount basics.Amount  `codec:"amt"`
}

// ApprovalBody is the Approval notification.
type ApprovalBody struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Owner   basics.Address `codec:"owner"`
	Spender basics.Address `codec:"spender"`
	Amount  basics.Amount  `codec:"amt"`
}

// BurnBody is the Burn notification.
type BurnBody struct {
	_struct struct{} `codec:",omitempty,omitemptyarray"`

	Asset  AssetID        `codec:"asset"`
	From   basics.Address `codec:"from"`
	Amount basics.Amount  `codec:"amt"`
}

// Token is the reference Channel: an allowance-gated fungible token whose
// balances live in the ledger next to the instances that use it.
// A spender acting on its own balance needs no allowance.
type Token struct {
	asset AssetID
	addr  basics.Address
}

// MakeToken returns the in-ledger token for asset.
func MakeToken(asset AssetID) *Token {
	return &Token{
		asset: asset,
		addr:  basics.Address(crypto.HashParts(protocol.SpecialAddr, []byte("token/"+asset.String()))),
	}
}

// Asset implements Channel.
func (t *Token) Asset() AssetID {
	return t.asset
}

// Address implements Channel.
func (t *Token) Address() basics.Address {
	return t.addr
}

func (t *Token) balanceKey(account basics.Address) []byte {
	return ledger.Key("tok", []byte(t.asset.String()), []byte("bal"), account[:])
}

func (t *Token) allowanceKey(owner, spender basics.Address) []byte {
	return ledger.Key("tok", []byte(t.asset.String()), []byte("allow"), owner[:], spender[:])
}

func (t *Token) supplyKey() []byte {
	return ledger.Key("tok", []byte(t.asset.String()), []byte("supply"))
}

// BalanceOf implements Channel.
func (t *Token) BalanceOf(tx *ledger.Tx, account basics.Address) (basics.Amount, error) {
	v, err := tx.GetUint64(t.balanceKey(account))
	return basics.Amount(v), err
}

// Allowance implements Channel.
func (t *Token) Allowance(tx *ledger.Tx, owner, spender basics.Address) (basics.Amount, error) {
	v, err := tx.GetUint64(t.allowanceKey(owner, spender))
	return basics.Amount(v), err
}

// TotalSupply returns the amount minted minus the amount burned.
func (t *Token) TotalSupply(tx *ledger.Tx) (basics.Amount, error) {
	v, err := tx.GetUint64(t.supplyKey())
	return basics.Amount(v), err
}

func (t *Token) setBalance(tx *ledger.Tx, account basics.Address, amount basics.Amount) {
	if amount == 0 {
		tx.Delete(t.balanceKey(account))
		return
	}
	tx.PutUint64(t.balanceKey(account), uint64(amount))
}

func (t *Token) debit(tx *ledger.Tx, account basics.Address, amount basics.Amount) error {
	bal, err := t.BalanceOf(tx, account)
	if err != nil {
		return err
	}
	if bal < amount {
		return basics.InsufficientResourceError("insufficient balance",
			"asset", t.asset.String(), "account", account.String(), "balance", uint64(bal), "amount", uint64(amount))
	}
	t.setBalance(tx, account, bal-amount)
	return nil
}

func (t *Token) credit(tx *ledger.Tx, account basics.Address, amount basics.Amount) error {
	bal, err := t.BalanceOf(tx, account)
	if err != nil {
		return err
	}
	sum, overflowed := basics.OAddA(bal, amount)
	if overflowed {
		return basics.RangeError("balance overflow", "asset", t.asset.String(), "account", account.String())
	}
	t.setBalance(tx, account, sum)
	return nil
}

func (t *Token) spendAllowance(tx *ledger.Tx, owner, spender basics.Address, amount basics.Amount) error {
	if owner == spender {
		return nil
	}
	allowed, err := t.Allowance(tx, owner, spender)
	if err != nil {
		return err
	}
	if allowed < amount {
		return basics.InsufficientResourceError("insufficient allowance",
			"asset", t.asset.String(), "owner", owner.String(), "spender", spender.String(),
			"allowance", uint64(allowed), "amount", uint64(amount))
	}
	if allowed == amount {
		tx.Delete(t.allowanceKey(owner, spender))
	} else {
		tx.PutUint64(t.allowanceKey(owner, spender), uint64(allowed-amount))
	}
	return nil
}

// Transfer implements Channel.
func (t *Token) Transfer(tx *ledger.Tx, from, to basics.Address, amount basics.Amount) error {
	if to.IsZero() {
		return basics.RangeError("transfer to the zero address", "asset", t.asset.String())
	}
	if err := t.debit(tx, from, amount); err != nil {
		return err
	}
	if err := t.credit(tx, to, amount); err != nil {
		return err
	}
	tx.Emit(t.addr, protocol.TransferEvent, TransferBody{From: from, To: to, Amount: amount})
	return nil
}

// TransferFrom implements Channel.
func (t *Token) TransferFrom(tx *ledger.Tx, spender, from, to basics.Address, amount basics.Amount) error {
	if err := t.spendAllowance(tx, from, spender, amount); err != nil {
		return err
	}
	return t.Transfer(tx, from, to, amount)
}

// Approve implements Channel.
func (t *Token) Approve(tx *ledger.Tx, owner, spender basics.Address, amount basics.Amount) error {
	if spender.IsZero() {
		return basics.RangeError("approve to the zero address", "asset", t.asset.String())
	}
	if amount == 0 {
		tx.Delete(t.allowanceKey(owner, spender))
	} else {
		tx.PutUint64(t.allowanceKey(owner, spender), uint64(amount))
	}
	tx.Emit(t.addr, protocol.ApprovalEvent, ApprovalBody{Owner: owner, Spender: spender, Amount: amount})
	return nil
}

// BurnFrom implements Channel.
func (t *Token) BurnFrom(tx *ledger.Tx, spender, from basics.Address, amount basics.Amount) error {
	if err := t.spendAllowance(tx, from, spender, amount); err != nil {
		return err
	}
	if err := t.debit(tx, from, amount); err != nil {
		return err
	}
	supply, err := t.TotalSupply(tx)
	if err != nil {
		return err
	}
	tx.PutUint64(t.supplyKey(), uint64(basics.SubSaturate(supply, amount)))
	tx.Emit(t.addr, protocol.BurnEvent, BurnBody{Asset: t.asset, From: from, Amount: amount})
	return nil
}

// Mint creates amount new units held by to.
func (t *Token) Mint(tx *ledger.Tx, to basics.Address, amount basics.Amount) error {
	supply, err := t.TotalSupply(tx)
	if err != nil {
		return err
	}
	newSupply, overflowed := basics.OAddA(supply, amount)
	if overflowed {
		return basics.RangeError("supply overflow", "asset", t.asset.String())
	}
	if err := t.credit(tx, to, amount); err != nil {
		return err
	}
	tx.PutUint64(t.supplyKey(), uint64(newSupply))
	tx.Emit(t.addr, protocol.TransferEvent, TransferBody{To: to, Amount: amount})
	return nil
}
