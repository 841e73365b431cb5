// Package policy 提供纯函数式的 tier 能力判定
// 与请求对象解耦，输入只有特权标志和 tier 能力快照
package policy

import "github.com/anoixa/tierbed/database/models"

// TierCapabilities tier 能力快照
type TierCapabilities struct {
	OriginalSize bool
	Thumbnails   bool
	ExpiringLink bool
}

// Subject 策略判定主体
// Tier 为 nil 表示未关联 tier（只有特权账号允许）
type Subject struct {
	Privileged bool
	Tier       *TierCapabilities
}

// SubjectFromUser 从用户模型构造判定主体
func SubjectFromUser(user *models.User) Subject {
	subject := Subject{Privileged: user.IsPrivileged()}
	if user.Tier != nil {
		subject.Tier = &TierCapabilities{
			OriginalSize: user.Tier.AllowsOriginalSize,
			Thumbnails:   user.Tier.AllowsThumbnails,
			ExpiringLink: user.Tier.AllowsExpiringLink,
		}
	}
	return subject
}

// CanViewOriginal 是否可以看到原图的完整访问路径
func (s Subject) CanViewOriginal() bool {
	return s.Privileged || (s.Tier != nil && s.Tier.OriginalSize)
}

// CanViewThumbnails 是否可以查看缩略图
func (s Subject) CanViewThumbnails() bool {
	return s.Privileged || (s.Tier != nil && s.Tier.Thumbnails)
}

// CanMintExpiringLink 是否可以签发过期链接
func (s Subject) CanMintExpiringLink() bool {
	return s.Privileged || (s.Tier != nil && s.Tier.ExpiringLink)
}
