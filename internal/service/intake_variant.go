package service

import (
	"fmt"

	"relief-hub/backend/internal/model"
)

// intakeKind 申报的四种形态，由 方向 × 状态 唯一确定
type intakeKind int

const (
	kindDonationPending      intakeKind = iota + 1 // 公众捐赠登记，待入库审批
	kindDonationReceived                           // 工作人员直接登记入库
	kindRequisitionPending                         // 申领申请，待出库审批
	kindRequisitionCompleted                       // 工作人员直接出库
)

func (k intakeKind) String() string {
	switch k {
	case kindDonationPending:
		return "DonationPending"
	case kindDonationReceived:
		return "DonationReceived"
	case kindRequisitionPending:
		return "RequisitionPending"
	case kindRequisitionCompleted:
		return "RequisitionCompleted"
	}
	return fmt.Sprintf("intakeKind(%d)", int(k))
}

// intakeRules 每种形态各自的校验与落库规则
type intakeRules struct {
	txType          string
	status          string
	staffOnly       bool   // 需登录账号
	allowFreeText   bool   // 允许按名称自由填写物资
	requireCenter   bool   // 至少一个站点
	checkStock      bool   // 写入前校验 数量 × 站点数 的总需求
	applyStock      bool   // 同一事务内立即变更库存
	newItemCategory string // 自由填写的新物资未指定分类时使用
}

func classify(txType, status string) (intakeKind, error) {
	switch {
	case txType == model.TxTypeIn && status == model.TxStatusPending:
		return kindDonationPending, nil
	case txType == model.TxTypeIn && status == model.TxStatusCompleted:
		return kindDonationReceived, nil
	case txType == model.TxTypeOut && status == model.TxStatusPending:
		return kindRequisitionPending, nil
	case txType == model.TxTypeOut && status == model.TxStatusCompleted:
		return kindRequisitionCompleted, nil
	}
	return 0, fmt.Errorf("%w: type=%s status=%s", ErrInvalidSubmission, txType, status)
}

func (k intakeKind) rules() intakeRules {
	switch k {
	case kindDonationPending:
		return intakeRules{
			txType:          model.TxTypeIn,
			status:          model.TxStatusPending,
			allowFreeText:   true,
			newItemCategory: model.CategoryPending,
		}
	case kindDonationReceived:
		return intakeRules{
			txType:          model.TxTypeIn,
			status:          model.TxStatusCompleted,
			staffOnly:       true,
			allowFreeText:   true,
			applyStock:      true,
			newItemCategory: model.CategoryGeneral,
		}
	case kindRequisitionPending:
		return intakeRules{
			txType: model.TxTypeOut,
			status: model.TxStatusPending,
		}
	case kindRequisitionCompleted:
		return intakeRules{
			txType:        model.TxTypeOut,
			status:        model.TxStatusCompleted,
			staffOnly:     true,
			requireCenter: true,
			checkStock:    true,
			applyStock:    true,
		}
	}
	panic("unreachable: " + k.String())
}
