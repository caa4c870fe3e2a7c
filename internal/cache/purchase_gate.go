package cache

import (
	"context"
	"errors"
	"fmt"

	apperrors "raffle-service/pkg/app_errors"

	"github.com/redis/go-redis/v9"
)

// ErrNotWarmed 表示該抽獎活動尚未預熱到 Redis；呼叫端應直接走資料庫路徑
var ErrNotWarmed = errors.New("purchase gate not warmed")

// RafflePurchaseGate 購票快速閘門：在進入資料庫交易前先以 Redis 擋掉
// 已售罄與超過個人上限的請求。資料庫的 unique index 仍是最終的正確性保證，
// 閘門只負責讓熱門活動不用每個請求都打到 Postgres。
type RafflePurchaseGate interface {
	// 預熱：活動開賣時載入剩餘名額與個人上限
	WarmUp(ctx context.Context, raffleID int, remaining int, maxPerUser int) error
	// 取得名額：原子性檢查剩餘名額與個人已購數 (Lua)
	Acquire(ctx context.Context, raffleID int, userID int) error
	// 釋放名額：購票失敗或付款失敗時回補 (Lua)
	Release(ctx context.Context, raffleID int, userID int) error
	// 查詢剩餘名額
	Remaining(ctx context.Context, raffleID int) (int, error)
	// 清除：活動取消或開獎後移除閘門
	Evict(ctx context.Context, raffleID int) error
}

type RafflePurchaseGateImpl struct {
	client *redis.Client
}

func NewRafflePurchaseGate(client *redis.Client) RafflePurchaseGate {
	return &RafflePurchaseGateImpl{
		client: client,
	}
}

func (g *RafflePurchaseGateImpl) gateKey(raffleID int) string {
	return fmt.Sprintf("raffle:%d:gate", raffleID)
}

// 個人持票數的 key
func (g *RafflePurchaseGateImpl) buyersKey(raffleID int) string {
	return fmt.Sprintf("raffle:%d:buyers", raffleID)
}

func (g *RafflePurchaseGateImpl) WarmUp(ctx context.Context, raffleID int, remaining int, maxPerUser int) error {
	key := g.gateKey(raffleID)
	return g.client.HSet(ctx, key, map[string]interface{}{
		"remaining": remaining,
		"cap":       maxPerUser,
	}).Err()
}

/*
	取得購票名額 (使用Lua腳本確保原子性)
	1. 檢查剩餘名額
	2. 檢查個人已購數量 (cap 為 0 代表不限)
	3. 執行扣減與紀錄
*/
func (g *RafflePurchaseGateImpl) Acquire(ctx context.Context, raffleID int, userID int) error {
	key := g.gateKey(raffleID)
	buyersKey := g.buyersKey(raffleID)

	script := `
		-- 1. 取得參數
		local gate_key = KEYS[1]
		local buyers_key = KEYS[2]
		local user_id = tonumber(ARGV[1])

		-- 2. 取得閘門資訊(剩餘名額、個人上限)
		local gate_info = redis.call('HMGET', gate_key, 'remaining', 'cap')
		local remaining = gate_info[1]
		local cap = gate_info[2]

		-- 3. 檢查數據是否存在
		if not remaining or not cap then
			return -3 -- 錯誤：閘門未預熱
		end

		-- 4. 檢查剩餘名額
		if tonumber(remaining) <= 0 then
			return -1 -- 錯誤：已售罄
		end

		-- 5. 檢查個人已購數量
		local bought = redis.call('HGET', buyers_key, user_id) or '0'
		if tonumber(cap) > 0 and tonumber(bought) + 1 > tonumber(cap) then
			return -2 -- 錯誤：超過個人購買上限
		end

		-- 6. 執行扣減與紀錄
		redis.call('HINCRBY', gate_key, 'remaining', -1)
		redis.call('HINCRBY', buyers_key, user_id, 1)

		return 1 -- 取得名額成功
	`

	result, err := g.client.Eval(ctx, script, []string{key, buyersKey}, userID).Result()
	if err != nil {
		return err
	}

	code, ok := result.(int64)
	if !ok {
		return errors.New("unexpected result")
	}

	switch code {
	case 1:
		return nil
	case -1:
		return apperrors.ErrRaffleClosed
	case -2:
		return apperrors.ErrExceedsMaxPerUser
	case -3:
		return ErrNotWarmed
	default:
		return errors.New("unexpected result")
	}
}

func (g *RafflePurchaseGateImpl) Release(ctx context.Context, raffleID int, userID int) error {
	key := g.gateKey(raffleID)
	buyersKey := g.buyersKey(raffleID)

	script := `
		-- 1. 取得參數
		local gate_key = KEYS[1]
		local buyers_key = KEYS[2]
		local user_id = tonumber(ARGV[1])

		-- 閘門不存在就不回補，避免 Evict 後殘留孤兒 key
		if redis.call('EXISTS', gate_key) == 0 then
			return "OK"
		end

		-- 2. 執行回補名額及個人持票數
		redis.call('HINCRBY', gate_key, 'remaining', 1)
		local bought = redis.call('HGET', buyers_key, user_id) or '0'
		if tonumber(bought) > 0 then
			redis.call('HINCRBY', buyers_key, user_id, -1)
		end

		return "OK"
	`

	_, err := g.client.Eval(ctx, script, []string{key, buyersKey}, userID).Result()
	if err != nil {
		return err
	}

	return nil
}

func (g *RafflePurchaseGateImpl) Remaining(ctx context.Context, raffleID int) (int, error) {
	key := g.gateKey(raffleID)
	val, err := g.client.HGet(ctx, key, "remaining").Int()
	if err == redis.Nil {
		return -1, ErrNotWarmed
	}
	return val, err
}

func (g *RafflePurchaseGateImpl) Evict(ctx context.Context, raffleID int) error {
	return g.client.Del(ctx, g.gateKey(raffleID), g.buyersKey(raffleID)).Err()
}
