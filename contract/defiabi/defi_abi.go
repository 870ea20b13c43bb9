// Package defiabi holds the fixed set of contract ABIs this deployment knows
// about. Decoding of arbitrary ABIs is explicitly out of scope.
package defiabi

//nolint:golint
import (
	_ "embed"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

//go:embed pair.json
var pairJSONABI string

//go:embed vault.json
var vaultJSONABI string

//go:embed voting_escrow.json
var votingEscrowJSONABI string

//go:embed rewards.json
var rewardsJSONABI string

//go:embed erc20.json
var erc20JSONABI string

// Event signatures in the abi.Event.String() form, used as handler registry keys.
const (
	PairMint = "event Mint(address indexed sender, address indexed to, uint256 amount0, uint256 amount1)"
	PairBurn = "event Burn(address indexed sender, address indexed from, uint256 amount0, uint256 amount1)"
	PairSwap = "event Swap(address indexed sender, uint256 amount0In, uint256 amount1In, uint256 amount0Out, uint256 amount1Out, address indexed to)"

	VaultDeposit  = "event Deposit(address indexed user, address indexed asset, uint256 amount)"
	VaultWithdraw = "event Withdraw(address indexed user, address indexed asset, uint256 amount)"
	VaultBorrow   = "event Borrow(address indexed user, uint256 amount)"
	VaultRepay    = "event Repay(address indexed user, uint256 amount)"

	VeLock     = "event Lock(address indexed provider, uint256 indexed tokenId, uint256 value, uint256 lockEnd)"
	VeWithdraw = "event Withdraw(address indexed provider, uint256 indexed tokenId, uint256 value)"
	VeMerge    = "event Merge(address indexed provider, uint256 indexed fromTokenId, uint256 indexed toTokenId)"

	RewardPaid = "event RewardPaid(address indexed user, address indexed pool, address indexed rewardToken, uint256 amount)"

	ERC20Transfer = "event Transfer(address indexed from, address indexed to, uint256 value)"
)

var (
	PairABI         = MustReadABI(pairJSONABI)
	VaultABI        = MustReadABI(vaultJSONABI)
	VotingEscrowABI = MustReadABI(votingEscrowJSONABI)
	RewardsABI      = MustReadABI(rewardsJSONABI)
	ERC20ABI        = MustReadABI(erc20JSONABI)

	ERC20TransferEventSignature = ERC20ABI.Events["Transfer"].ID
)

func MustReadABI(jsonABI string) abi.ABI {
	res, err := abi.JSON(strings.NewReader(jsonABI))
	if err != nil {
		panic(err)
	}
	return res
}
