package store

import (
	"context"
	"testing"

	"github.com/rushteam/persokit/core"
)

func TestMemoryStore_Profiles(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()

	ms.PutProfile(&core.UserProfile{UserID: "u1", TotalSessions: 3})
	ms.PutProfile(&core.UserProfile{UserID: "u2", TotalSessions: 7})
	ms.PutProfile(&core.UserProfile{UserID: "u1", TotalSessions: 5}) // 覆盖

	got, err := ms.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("GetProfile 失败: %v", err)
	}
	if got.TotalSessions != 5 {
		t.Errorf("覆盖写入后期望 5，实际 %d", got.TotalSessions)
	}

	if _, err := ms.GetProfile(ctx, "ghost"); !core.IsNotFound(err) {
		t.Errorf("未知用户期望 NOT_FOUND，实际 %v", err)
	}

	list, err := ms.ListProfiles(ctx)
	if err != nil {
		t.Fatalf("ListProfiles 失败: %v", err)
	}
	if len(list) != 2 || list[0].UserID != "u1" || list[1].UserID != "u2" {
		t.Errorf("期望按写入顺序 [u1 u2]，实际 %v", list)
	}

	// 返回的是副本：改动不应影响存储
	list[0].TotalSessions = 999
	again, _ := ms.GetProfile(ctx, "u1")
	if again.TotalSessions != 5 {
		t.Error("ListProfiles 应返回副本")
	}
}

func TestMemoryStore_Products(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()

	ms.PutProduct(core.Product{ID: "p1", Name: "Laptop"})
	ms.PutProduct(core.Product{ID: "p2", Name: "Mug"})

	got, err := ms.GetProduct(ctx, "p2")
	if err != nil || got.Name != "Mug" {
		t.Errorf("GetProduct 期望 Mug，实际 (%v, %v)", got, err)
	}
	if _, err := ms.GetProduct(ctx, "ghost"); !core.IsNotFound(err) {
		t.Errorf("未知商品期望 NOT_FOUND，实际 %v", err)
	}

	list, err := ms.ListProducts(ctx)
	if err != nil || len(list) != 2 {
		t.Errorf("ListProducts 期望 2 条，实际 (%d, %v)", len(list), err)
	}
}
